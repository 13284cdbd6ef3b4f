package pipeline

// Category is the label returned by the classification stage. The model is
// asked for one of the constants below, but its reply is never validated.
type Category string

const (
	LegalDocument      Category = "Legal Document"
	RealEstateDocument Category = "Real Estate Document"
	InvoiceOrReceipt   Category = "Invoice or Receipt"
	ProductImage       Category = "Product Image"
	Unknown            Category = "Unknown"
)

func Categories() []Category {
	return []Category{LegalDocument, RealEstateDocument, InvoiceOrReceipt, ProductImage, Unknown}
}

// IsKnown reports whether c is one of the five requested labels.
func (c Category) IsKnown() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
