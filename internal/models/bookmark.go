package models

import "time"

// Bookmark — связь пользователя и стихотворения.
// Запись не удаляется физически: при снятии закладки флаг IsBookmarked
// сбрасывается, строка остаётся.
type Bookmark struct {
	UserUID      string    // Идентификатор пользователя
	PoemID       int       // Идентификатор стихотворения
	IsBookmarked bool      // Активна ли закладка
	CreatedAt    time.Time // Дата первой установки закладки
}
