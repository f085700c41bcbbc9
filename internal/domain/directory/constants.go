package directory

const (
	EmploymentFullTime = "full_time"
	EmploymentPartTime = "part_time"
	EmploymentContract = "contract"
	EmploymentIntern   = "intern"
)

var EmploymentTypes = []string{EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentIntern}

func ValidEmploymentType(t string) bool {
	for _, known := range EmploymentTypes {
		if t == known {
			return true
		}
	}
	return false
}
