package domain

import (
	"context"
	"io"
	"time"
)

// Элемент листинга: папка (size/lastModified нулевые) или файл.
type Entry struct {
	Name         string    `json:"name"` // последний сегмент без завершающего "/"
	Path         string    `json:"path"` // полный ключ/префикс в бакете
	Size         int64     `json:"size,omitempty"`
	LastModified time.Time `json:"lastModified,omitzero"`
}

// Listing — одноуровневый (не рекурсивный) срез содержимого префикса.
// Truncated выставляется, если стор вернул больше записей, чем мы готовы
// отдать за один вызов; элементы за пределом не теряются молча.
type Listing struct {
	Folders   []Entry
	Files     []Entry
	Truncated bool
}

// ObjectStore — шлюз к объектному хранилищу. Только механизм:
// никакой авторизации, вызывающая сторона обязана передавать уже
// авторизованный ключ/префикс.
type ObjectStore interface {
	// Одноуровневый листинг по разделителю "/".
	List(ctx context.Context, prefix string) (Listing, error)
	// Presigned PUT на 1 час; байты зальёт сам клиент.
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	// Presigned GET на 1 час; отсутствие объекта — ErrNotFound.
	PresignGet(ctx context.Context, key string) (string, error)
	DeleteOne(ctx context.Context, key string) error
	// Рекурсивное удаление: все страницы листинга, батчами.
	// Пустой префикс-дерево — успешный no-op.
	DeleteTree(ctx context.Context, prefix string) error
	// Нулевой объект-маркер пустой папки; key обязан кончаться на "/".
	CreateMarker(ctx context.Context, key string) error
	// Стримит zip всех объектов под префиксом в w, имена членов —
	// ключ без префикса; маркеры папок пропускаются.
	// Пустой префикс — ErrNotFound.
	StreamZip(ctx context.Context, prefix string, w io.Writer) error
	Ping(ctx context.Context) error
}
