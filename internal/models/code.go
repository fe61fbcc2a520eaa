package models

// CodeStatus is whether a redemption code still works
type CodeStatus string

const (
	CodeActive  CodeStatus = "active"
	CodeExpired CodeStatus = "expired"
)

// Code represents an in-game redemption code
type Code struct {
	Code      string     `json:"code"`
	Reward    string     `json:"reward"`
	Status    CodeStatus `json:"status"`
	AddedDate string     `json:"addedDate"`
}

// CodeList groups codes by status for listings
type CodeList struct {
	Active  []Code `json:"active"`
	Expired []Code `json:"expired"`
}

// GroupCodes splits codes by status, keeping input order
func GroupCodes(codes []Code) CodeList {
	list := CodeList{Active: []Code{}, Expired: []Code{}}
	for _, c := range codes {
		if c.Status == CodeActive {
			list.Active = append(list.Active, c)
		} else {
			list.Expired = append(list.Expired, c)
		}
	}
	return list
}
