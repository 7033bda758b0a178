package dto

// Paginated wraps one page of results with its metadata. CurrentPage is 0-based.
type Paginated[T any] struct {
	Data             []T   `json:"data"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	NumberOfElements int   `json:"numberOfElements"`
	CurrentPage      int   `json:"currentPage"`
	PageSize         int   `json:"pageSize"`
}

// NewPaginated computes page metadata for data at page/size of total elements.
func NewPaginated[T any](data []T, total int64, page, size int) Paginated[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return Paginated[T]{
		Data:             data,
		TotalElements:    total,
		TotalPages:       totalPages,
		NumberOfElements: len(data),
		CurrentPage:      page,
		PageSize:         size,
	}
}
