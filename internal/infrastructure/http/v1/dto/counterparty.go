package dto

import (
	"retailcore/internal/domain/catalogs/counterparty"
)

// CreateCounterpartyRequest for creating counterparties.
// Code and AccountNo are auto-assigned when omitted.
type CreateCounterpartyRequest struct {
	Code      string  `json:"code"`
	Name      string  `json:"name" binding:"required"`
	Type      string  `json:"type" binding:"required,oneof=customer supplier both"`
	AccountNo string  `json:"accountNo"`
	TaxID     *string `json:"taxId"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Address   *string `json:"address"`
	Comment   *string `json:"comment"`
}

// ToCounterparty builds the domain model from the request.
func (r CreateCounterpartyRequest) ToCounterparty() *counterparty.Counterparty {
	cp := counterparty.New(r.Code, r.Name, counterparty.Type(r.Type))
	cp.AccountNo = r.AccountNo
	cp.TaxID = r.TaxID
	cp.Phone = r.Phone
	cp.Email = r.Email
	cp.Address = r.Address
	cp.Comment = r.Comment
	return cp
}

// UpdateCounterpartyRequest for updating counterparties.
// Nil fields are left unchanged; Version drives optimistic locking.
type UpdateCounterpartyRequest struct {
	Name    *string `json:"name"`
	Type    *string `json:"type" binding:"omitempty,oneof=customer supplier both"`
	TaxID   *string `json:"taxId"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Comment *string `json:"comment"`
	Version int     `json:"version" binding:"required,min=1"`
}

// Apply copies the non-nil request fields onto the loaded counterparty.
func (r UpdateCounterpartyRequest) Apply(cp *counterparty.Counterparty) {
	if r.Name != nil {
		cp.Name = *r.Name
	}
	if r.Type != nil {
		cp.Type = counterparty.Type(*r.Type)
	}
	if r.TaxID != nil {
		cp.TaxID = r.TaxID
	}
	if r.Phone != nil {
		cp.Phone = r.Phone
	}
	if r.Email != nil {
		cp.Email = r.Email
	}
	if r.Address != nil {
		cp.Address = r.Address
	}
	if r.Comment != nil {
		cp.Comment = r.Comment
	}
	cp.Version = r.Version
}

// CounterpartyResponse contains counterparty fields.
type CounterpartyResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	AccountNo    string  `json:"accountNo"`
	TaxID        *string `json:"taxId,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Email        *string `json:"email,omitempty"`
	Address      *string `json:"address,omitempty"`
	Comment      *string `json:"comment,omitempty"`
	DeletionMark bool    `json:"deletionMark"`
	Version      int     `json:"version"`
}

// FromCounterparty maps the domain model to the response.
func FromCounterparty(cp *counterparty.Counterparty) CounterpartyResponse {
	return CounterpartyResponse{
		ID:           cp.ID.String(),
		Code:         cp.Code,
		Name:         cp.Name,
		Type:         string(cp.Type),
		AccountNo:    cp.AccountNo,
		TaxID:        cp.TaxID,
		Phone:        cp.Phone,
		Email:        cp.Email,
		Address:      cp.Address,
		Comment:      cp.Comment,
		DeletionMark: cp.DeletionMark,
		Version:      cp.Version,
	}
}

// FromCounterparties maps a slice for list responses.
func FromCounterparties(items []*counterparty.Counterparty) []CounterpartyResponse {
	out := make([]CounterpartyResponse, 0, len(items))
	for _, cp := range items {
		out = append(out, FromCounterparty(cp))
	}
	return out
}
