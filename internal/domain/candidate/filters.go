package candidate

// FilterCatalogue lists the facet values a search UI offers.
type FilterCatalogue struct {
	Roles             []string `json:"roles"`
	Locations         []string `json:"locations"`
	Experience        []string `json:"experience"`
	Education         []string `json:"education"`
	SalaryRange       []string `json:"salary_range"`
	VisaSponsorship   []string `json:"visa_sponsorship"`
	SecurityClearance []string `json:"security_clearance"`
}

// Filters returns a fresh copy of the static catalogue.
func Filters() FilterCatalogue {
	yesNo := func() []string { return []string{"Yes", "No"} }
	return FilterCatalogue{
		Roles: []string{
			"Software Engineer", "Data Scientist", "Product Manager",
			"Data Engineer", "Machine Learning Engineer",
		},
		Locations: []string{
			"San Francisco", "New York", "Seattle", "Los Angeles", "Chicago",
			"Austin", "Boston", "Washington D.C.", "Atlanta", "Remote",
		},
		Experience: []string{"Student", "0-2 years", "2-5 years", "5-10 years", "10+ years"},
		Education:  []string{"High School", "Bachelors", "Masters", "PhD"},
		SalaryRange: []string{
			"$0-$50,000", "$50,000-$100,000", "$100,000-$150,000", "$150,000-$200,000",
			"$200,000-$250,000", "$250,000-$300,000", "$300,000-$350,000", "$350,000+",
		},
		VisaSponsorship:   yesNo(),
		SecurityClearance: yesNo(),
	}
}
