package payments

// Session is the processor's authoritative view of a checkout, reduced to the
// fields order materialization needs. Amounts are minor currency units.
type Session struct {
	ID              string
	PaymentIntentID string
	AmountSubtotal  int64
	AmountTotal     int64
	CustomerEmail   string
	Metadata        map[string]string
	CustomerDetails ContactDetails
	ShippingDetails ContactDetails
	LineItems       []SessionLineItem
}

type ContactDetails struct {
	Name    string
	Email   string
	Phone   string
	Address Address
}

type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type SessionLineItem struct {
	Description     string
	Quantity        int64
	UnitAmount      int64
	ProductName     string
	ProductMetadata map[string]string
}

type CreateSessionInput struct {
	Currency         string
	LineItems        []LineItemInput
	Metadata         map[string]string
	SuccessURL       string
	CancelURL        string
	CustomerEmail    string
	AllowedCountries []string
	CollectPhone     bool
}

type LineItemInput struct {
	Name       string
	UnitAmount int64
	Quantity   int64
	ImageURL   string
	Metadata   map[string]string
}

// CreatedSession is the outcome of session creation; URL is the hosted
// checkout redirect target.
type CreatedSession struct {
	ID  string
	URL string
}
