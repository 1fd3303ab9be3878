package domain

// DefaultPage и DefaultLimit применяются, если клиент не передал значения.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// ListQuery - параметры постраничной выборки.
type ListQuery struct {
	Status *OrderStatus
	Page   int
	Limit  int
}

// Offset возвращает количество пропускаемых записей.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Validate проверяет границы страницы.
func (q ListQuery) Validate() error {
	if q.Page < 1 || q.Limit < 1 {
		return ErrInvalidPagination
	}
	if q.Status != nil && !q.Status.Valid() {
		return ErrUnknownStatus
	}
	return nil
}

// PageMeta - метаданные страницы.
type PageMeta struct {
	Total       int
	CurrentPage int
	LastPage    int
}

// Page - страница заказов.
type Page struct {
	Data []Order
	Meta PageMeta
}

// LastPage = ceil(total/limit).
func LastPage(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
