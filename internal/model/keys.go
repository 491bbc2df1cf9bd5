package model

// Keys — поисковые ключи документа; пустое значение означает "поле отсутствует".
type Keys struct {
	ID          string
	Username    string
	ModelNumber string
}
