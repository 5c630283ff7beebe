package types

// ProductImage describes one gallery entry stored on a product.
type ProductImage struct {
	URL      string `json:"url"`
	AltText  string `json:"alt_text,omitempty"`
	Position int    `json:"position"`
}

// ProductImages is persisted as a jsonb column.
type ProductImages []ProductImage
