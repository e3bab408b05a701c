// Package access решает, какой текст стихотворения видит читатель.
package access

import (
	"strings"
	"time"

	"github.com/danengatsby/poesisverse/internal/lib/plan"
	"github.com/danengatsby/poesisverse/internal/models"
)

// PreviewLines задает число первых строк, видимых без подписки.
const PreviewLines = 2

// Caller описывает читателя запроса: аноним или загруженный пользователь.
type Caller struct {
	Authenticated bool
	User          *models.User
}

// Projection представляет стихотворение в том виде, в котором его получает читатель.
type Projection struct {
	ID              int        `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	Content         string     `json:"content"`
	Description     *string    `json:"description,omitempty"`
	Year            *int       `json:"year,omitempty"`
	Category        *string    `json:"category,omitempty"`
	ImageURL        string     `json:"image_url"`
	AudioURL        *string    `json:"audio_url,omitempty"`
	IsPremium       bool       `json:"is_premium"`
	IsPremiumLocked bool       `json:"is_premium_locked"`
	CreatedAt       time.Time  `json:"created_at"`
}

// HasActiveSubscription определяет статус подписки по датам, а не по сохраненному флагу.
// При отсутствии дат остается довериться флагу из хранилища.
func HasActiveSubscription(user *models.User, now time.Time) bool {
	if user == nil {
		return false
	}
	if user.SubscriptionEndDate != nil {
		return plan.DaysRemaining(*user.SubscriptionEndDate, now) > 0
	}
	return user.IsSubscribed
}

// Evaluate строит проекцию стихотворения для конкретного читателя.
// Премиальный текст урезается до превью, если у читателя нет активной подписки.
func Evaluate(poem *models.Poem, caller Caller, now time.Time) Projection {
	p := Projection{
		ID:          poem.ID,
		Title:       poem.Title,
		Author:      poem.Author,
		Content:     poem.Content,
		Description: poem.Description,
		Year:        poem.Year,
		Category:    poem.Category,
		ImageURL:    poem.ImageURL,
		AudioURL:    poem.AudioURL,
		IsPremium:   poem.IsPremium,
		CreatedAt:   poem.CreatedAt,
	}

	if !poem.IsPremium {
		return p
	}
	if caller.Authenticated && HasActiveSubscription(caller.User, now) {
		return p
	}

	p.Content = redact(poem.Content)
	p.IsPremiumLocked = true
	return p
}

// redact оставляет первые строки текста и добавляет маркер обрезки.
func redact(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) > PreviewLines {
		lines = lines[:PreviewLines]
	}
	return strings.Join(lines, "\n") + "\n..."
}
