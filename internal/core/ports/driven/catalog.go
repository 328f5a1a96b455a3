package driven

// DatabaseCatalog maps a country code to backend database names
type DatabaseCatalog interface {
	GuidelineDatabase(country string) string
	DrugDatabase(country string) string
	FallbackDatabase() string
}
