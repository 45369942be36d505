package models

const DefaultAmount = "0"

type Form struct {
	Amount   string `json:"amount"`
	Receiver string `json:"receiver"`
	Token    *Token `json:"token,omitempty"`
}

func NewForm() Form {
	return Form{Amount: DefaultAmount}
}

// Clears amount and receiver after a transfer lands. The token selection is kept.
func (f *Form) Reset() {
	f.Amount = DefaultAmount
	f.Receiver = ""
}
