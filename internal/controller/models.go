package controller

import (
	"encoding/json"
	"fmt"
)

// New project request

type NewProjectReq struct {
	CustomerId  string `json:"customerId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func ParseNewProjectReq(data []byte) (*NewProjectReq, error) {
	p := &NewProjectReq{}

	err := json.Unmarshal(data, p)
	if err != nil {
		return nil, err
	}

	if len(p.CustomerId) == 0 {
		return nil, fmt.Errorf("empty customerId supplied")
	}
	if len(p.Title) == 0 {
		return nil, fmt.Errorf("empty title supplied")
	}
	if err = checkLengthLimit(p.Title, "Title", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(p.Description, "Description", 2000); err != nil {
		return nil, err
	}

	return p, nil
}

// New site visit request

type NewVisitReq struct {
	ContractorId string `json:"contractorId"`
}

func ParseNewVisitReq(data []byte) (*NewVisitReq, error) {
	v := &NewVisitReq{}

	err := json.Unmarshal(data, v)
	if err != nil {
		return nil, err
	}

	if len(v.ContractorId) == 0 {
		return nil, fmt.Errorf("empty contractorId supplied")
	}

	return v, nil
}

// New bid request

type NewBidReq struct {
	ContractorId string  `json:"contractorId"`
	Price        float64 `json:"price"`
	Description  string  `json:"description"`
	DocumentRef  *string `json:"documentRef"`
}

func ParseNewBidReq(data []byte) (*NewBidReq, error) {
	b := &NewBidReq{}

	err := json.Unmarshal(data, b)
	if err != nil {
		return nil, err
	}

	if len(b.ContractorId) == 0 {
		return nil, fmt.Errorf("empty contractorId supplied")
	}
	if err = checkLengthLimit(b.Description, "Description", 2000); err != nil {
		return nil, err
	}

	return b, nil
}

// Service

func checkLengthLimit(str, fieldName string, limit int) error {
	if len(str) > limit {
		return fmt.Errorf("field '%s' exceeds length limit: %d / %d", fieldName, len(str), limit)
	}
	return nil
}
