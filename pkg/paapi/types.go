package paapi

import "strconv"

// getItemsRequest is the JSON body of a GetItems call.
type getItemsRequest struct {
	ItemIDs     []string `json:"ItemIds"`
	ItemIDType  string   `json:"ItemIdType"`
	Resources   []string `json:"Resources"`
	PartnerTag  string   `json:"PartnerTag"`
	PartnerType string   `json:"PartnerType"`
	Marketplace string   `json:"Marketplace"`
}

type getItemsResponse struct {
	ItemsResult *struct {
		Items []Item `json:"Items"`
	} `json:"ItemsResult"`
	Errors []errorBody `json:"Errors"`
}

// Item is the subset of a GetItems result used for enrichment.
type Item struct {
	ASIN          string    `json:"ASIN"`
	DetailPageURL string    `json:"DetailPageURL"`
	ItemInfo      *ItemInfo `json:"ItemInfo"`
}

// ItemInfo groups the informational resources of an item.
type ItemInfo struct {
	ContentInfo     *ContentInfo     `json:"ContentInfo"`
	Classifications *Classifications `json:"Classifications"`
	ContentRating   *ContentRating   `json:"ContentRating"`
}

// ContentInfo holds page count and language information.
type ContentInfo struct {
	PagesCount *IntValue  `json:"PagesCount"`
	Languages  *Languages `json:"Languages"`
}

// Classifications holds marketplace classification attributes.
type Classifications struct {
	Binding      *StringValue `json:"Binding"`
	ProductGroup *StringValue `json:"ProductGroup"`
	GradeLevel   *StringValue `json:"GradeLevel"`
}

// ContentRating holds the audience rating, which carries the reading age for books.
type ContentRating struct {
	AudienceRating *StringValue `json:"AudienceRating"`
}

// IntValue is a numeric display attribute.
type IntValue struct {
	DisplayValue int    `json:"DisplayValue"`
	Label        string `json:"Label"`
	Locale       string `json:"Locale"`
}

// StringValue is a textual display attribute.
type StringValue struct {
	DisplayValue string `json:"DisplayValue"`
	Label        string `json:"Label"`
	Locale       string `json:"Locale"`
}

// Languages lists the languages of an item.
type Languages struct {
	DisplayValues []LanguageValue `json:"DisplayValues"`
	Label         string          `json:"Label"`
	Locale        string          `json:"Locale"`
}

// LanguageValue is one language entry, e.g. {"DisplayValue":"English","Type":"Published"}.
type LanguageValue struct {
	DisplayValue string `json:"DisplayValue"`
	Type         string `json:"Type"`
}

// PageCount returns the page count as text, "" when unknown.
func (i *Item) PageCount() string {
	if i == nil || i.ItemInfo == nil || i.ItemInfo.ContentInfo == nil || i.ItemInfo.ContentInfo.PagesCount == nil {
		return ""
	}
	if i.ItemInfo.ContentInfo.PagesCount.DisplayValue <= 0 {
		return ""
	}
	return strconv.Itoa(i.ItemInfo.ContentInfo.PagesCount.DisplayValue)
}

// Language returns the first listed language, preferring the published one.
func (i *Item) Language() string {
	if i == nil || i.ItemInfo == nil || i.ItemInfo.ContentInfo == nil || i.ItemInfo.ContentInfo.Languages == nil {
		return ""
	}
	values := i.ItemInfo.ContentInfo.Languages.DisplayValues
	for _, v := range values {
		if v.Type == "Published" {
			return v.DisplayValue
		}
	}
	if len(values) > 0 {
		return values[0].DisplayValue
	}
	return ""
}

// GradeLevel returns the grade level classification, "" when unknown.
func (i *Item) GradeLevel() string {
	if i == nil || i.ItemInfo == nil || i.ItemInfo.Classifications == nil {
		return ""
	}
	return displayValue(i.ItemInfo.Classifications.GradeLevel)
}

// ReadingAge returns the audience rating, "" when unknown.
func (i *Item) ReadingAge() string {
	if i == nil || i.ItemInfo == nil || i.ItemInfo.ContentRating == nil {
		return ""
	}
	return displayValue(i.ItemInfo.ContentRating.AudienceRating)
}

func displayValue(v *StringValue) string {
	if v == nil {
		return ""
	}
	return v.DisplayValue
}
