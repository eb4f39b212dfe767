package submit_journal

// Request тело запроса с записью дневника сессии
type Request struct {
	Journal string `json:"journal"`
}
