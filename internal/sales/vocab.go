//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package sales

import "slices"

// Region is a customer region.
type Region string

// Regions.
const (
	RegionSouth   Region = "South"
	RegionWest    Region = "West"
	RegionNorth   Region = "North"
	RegionEast    Region = "East"
	RegionCentral Region = "Central"
)

// Gender is a customer gender.
type Gender string

// Genders.
const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Category is a product category.
type Category string

// Categories.
const (
	CategoryBeauty      Category = "Beauty"
	CategoryClothing    Category = "Clothing"
	CategoryElectronics Category = "Electronics"
)

// PaymentMethod is the payment method of a sale.
type PaymentMethod string

// Payment methods.
const (
	PaymentCash       PaymentMethod = "Cash"
	PaymentCreditCard PaymentMethod = "Credit Card"
	PaymentDebitCard  PaymentMethod = "Debit Card"
	PaymentNetBanking PaymentMethod = "Net Banking"
	PaymentUPI        PaymentMethod = "UPI"
	PaymentWallet     PaymentMethod = "Wallet"
)

// Tag is a product tag. Products store their tags as one comma-delimited
// string, so tags are matched by substring rather than by equality.
type Tag string

// Tags.
const (
	TagAccessories   Tag = "accessories"
	TagBeauty        Tag = "beauty"
	TagCasual        Tag = "casual"
	TagCotton        Tag = "cotton"
	TagFashion       Tag = "fashion"
	TagFormal        Tag = "formal"
	TagFragranceFree Tag = "fragrance-free"
	TagGadgets       Tag = "gadgets"
	TagMakeup        Tag = "makeup"
	TagOrganic       Tag = "organic"
	TagPortable      Tag = "portable"
	TagSkincare      Tag = "skincare"
	TagSmart         Tag = "smart"
	TagUnisex        Tag = "unisex"
	TagWireless      Tag = "wireless"
)

// SortField selects the column the sales page is ordered by.
type SortField string

// Sort fields.
const (
	SortByDate     SortField = "date"
	SortByQuantity SortField = "quantity"
	SortByAmount   SortField = "amount"
	SortByName     SortField = "name"
)

// SortOrder is the sort direction.
type SortOrder string

// Sort orders.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Closed vocabularies, in display order.
var (
	Regions        = []Region{RegionSouth, RegionWest, RegionNorth, RegionEast, RegionCentral}
	Genders        = []Gender{GenderMale, GenderFemale}
	Categories     = []Category{CategoryBeauty, CategoryClothing, CategoryElectronics}
	PaymentMethods = []PaymentMethod{PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentNetBanking, PaymentUPI, PaymentWallet}
	Tags           = []Tag{
		TagAccessories, TagBeauty, TagCasual, TagCotton, TagFashion,
		TagFormal, TagFragranceFree, TagGadgets, TagMakeup, TagOrganic,
		TagPortable, TagSkincare, TagSmart, TagUnisex, TagWireless,
	}
	SortFields = []SortField{SortByDate, SortByQuantity, SortByAmount, SortByName}
	SortOrders = []SortOrder{SortAsc, SortDesc}
)

// Vocabulary names used by the filter validator.
const (
	VocabRegion        = "region"
	VocabGender        = "gender"
	VocabCategory      = "category"
	VocabPaymentMethod = "paymentMethod"
	VocabTag           = "tag"
	VocabSortField     = "sortBy"
	VocabSortOrder     = "sortOrder"
)

var vocabularies = map[string][]string{
	VocabRegion:        toStrings(Regions),
	VocabGender:        toStrings(Genders),
	VocabCategory:      toStrings(Categories),
	VocabPaymentMethod: toStrings(PaymentMethods),
	VocabTag:           toStrings(Tags),
	VocabSortField:     toStrings(SortFields),
	VocabSortOrder:     toStrings(SortOrders),
}

// Vocabulary returns the allowed values of the named vocabulary, or nil if
// the name is unknown.
func Vocabulary(name string) []string {
	return vocabularies[name]
}

// InVocabulary reports whether value belongs to the named vocabulary.
func InVocabulary(name, value string) bool {
	return slices.Contains(vocabularies[name], value)
}

// Valid reports whether f is a known sort field.
func (f SortField) Valid() bool { return slices.Contains(SortFields, f) }

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// Strings converts a slice of vocabulary values to plain strings.
func Strings[T ~string](values []T) []string {
	if len(values) == 0 {
		return nil
	}
	return toStrings(values)
}
