package models

import "time"

// Poem представляет стихотворение каталога,
// используется в бизнес-логике и хранилище.
type Poem struct {
	ID          int       // Уникальный идентификатор
	Title       string    // Название (уникальное, проверяется при записи)
	Author      string    // Автор
	Content     string    // Полный текст стихотворения
	Description *string   // Необязательное описание
	Year        *int      // Необязательный год написания
	Category    *string   // Необязательная категория
	ImageURL    string    // Ссылка на изображение
	AudioURL    *string   // Необязательная ссылка на аудиозапись
	IsPremium   bool      // Доступно ли стихотворение только по подписке
	CreatedAt   time.Time // Дата создания записи
}

// DummyPoem используется для приёма данных стихотворения из JSON-запроса,
// прежде чем конвертировать их в Poem.
type DummyPoem struct {
	Title       string `json:"title" validate:"required,min=1,max=200"` // Название
	Author      string `json:"author" validate:"required"`              // Автор
	Content     string `json:"content" validate:"required"`             // Полный текст
	Description string `json:"description"`                             // Описание
	Year        int    `json:"year"`                                    // Год написания
	Category    string `json:"category"`                                // Категория
	ImageURL    string `json:"image_url" validate:"required"`           // Изображение
	AudioURL    string `json:"audio_url"`                               // Аудиозапись
	IsPremium   bool   `json:"is_premium"`                              // Премиум-доступ
}

// ToPoem конвертирует данные запроса в доменную модель.
// Пустые необязательные поля превращаются в nil.
func (d DummyPoem) ToPoem() Poem {
	p := Poem{
		Title:     d.Title,
		Author:    d.Author,
		Content:   d.Content,
		ImageURL:  d.ImageURL,
		IsPremium: d.IsPremium,
	}
	if d.Description != "" {
		p.Description = &d.Description
	}
	if d.Year != 0 {
		year := d.Year
		p.Year = &year
	}
	if d.Category != "" {
		p.Category = &d.Category
	}
	if d.AudioURL != "" {
		p.AudioURL = &d.AudioURL
	}
	return p
}
