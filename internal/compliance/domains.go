package compliance

import "strings"

// Domain is a regulatory framework a document can be checked against.
type Domain struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Domains lists the built-in frameworks.
var Domains = []Domain{
	{"GDPR", "EU General Data Protection Regulation: lawful basis, consent, data subject rights, retention and transfer of personal data."},
	{"HIPAA", "US Health Insurance Portability and Accountability Act: privacy and security of protected health information."},
	{"SOC 2", "AICPA trust services criteria: security, availability, processing integrity, confidentiality and privacy controls."},
	{"ISO 27001", "Information security management system requirements: risk assessment, controls and continual improvement."},
	{"PCI-DSS", "Payment Card Industry Data Security Standard: protection of cardholder data and secure payment processing."},
}

// LookupDomain finds a built-in domain by case-insensitive name.
func LookupDomain(name string) (Domain, bool) {
	for _, d := range Domains {
		if strings.EqualFold(d.Name, strings.TrimSpace(name)) {
			return d, true
		}
	}
	return Domain{}, false
}
