package entity

// Locations — доступные площадки соревнования (теги, как их видит клиент).
var Locations = []string{
	"bhilai", "bhubaneswar", "chennai", "delhi", "dhanbad", "dharwad",
	"gandhinagar", "goa", "guwahati", "hyderabad", "indore", "jammu",
	"jodhpur", "kanpur", "kharagpur", "mandi", "mumbai", "palakkad",
	"patna", "roorkee", "ropar", "tirupati", "varanasi",
}

// IsValidLocation проверяет, что тег площадки известен системе.
func IsValidLocation(location string) bool {
	for _, l := range Locations {
		if l == location {
			return true
		}
	}
	return false
}
