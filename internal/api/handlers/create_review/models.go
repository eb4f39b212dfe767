package create_review

// Request тело отзыва. Бронирование берется из пути.
type Request struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}
