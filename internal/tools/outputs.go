package tools

import (
	"time"

	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/workflow"
)

type ContactView struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Status    string  `json:"status"`
	Label     string  `json:"label"`
}

type PropertyView struct {
	ID              string                 `json:"id"`
	Reference       string                 `json:"reference"`
	Title           string                 `json:"title"`
	Type            string                 `json:"type"`
	Status          string                 `json:"status"`
	Price           float64                `json:"price"`
	Address         string                 `json:"address"`
	City            string                 `json:"city"`
	Characteristics domain.Characteristics `json:"characteristics"`
	Label           string                 `json:"label"`
}

type ContractView struct {
	ID         string               `json:"id"`
	Type       string               `json:"type"`
	Status     string               `json:"status"`
	PropertyID string               `json:"propertyId"`
	ContactID  string               `json:"contactId"`
	Terms      domain.ContractTerms `json:"terms"`
	CreatedAt  string               `json:"createdAt"`
	UpdatedAt  string               `json:"updatedAt"`
}

type TaskView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	DueDate  string `json:"dueDate"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
}

type VisitView struct {
	ID              string `json:"id"`
	PropertyID      string `json:"propertyId"`
	ContactID       string `json:"contactId"`
	ScheduledAt     string `json:"scheduledAt"`
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`
}

type PropertyPage struct {
	Items  []PropertyView `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type PrepareContractOutput struct {
	Contract       ContractView         `json:"contract"`
	Property       PropertyView         `json:"property"`
	Contact        ContactView          `json:"contact"`
	ContactCreated bool                 `json:"contactCreated"`
	Tasks          []TaskView           `json:"tasks"`
	Transcript     *workflow.Transcript `json:"transcript"`
}

type ScheduleVisitOutput struct {
	Visit      VisitView            `json:"visit"`
	Property   PropertyView         `json:"property"`
	Contact    ContactView          `json:"contact"`
	Task       *TaskView            `json:"task,omitempty"`
	Transcript *workflow.Transcript `json:"transcript"`
}

type CreateTaskOutput struct {
	Task       TaskView             `json:"task"`
	Transcript *workflow.Transcript `json:"transcript"`
}

func contactView(c domain.Contact) ContactView {
	return ContactView{
		ID:        c.ID.String(),
		Type:      string(c.Type),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Status:    c.Status,
		Label:     c.Label(),
	}
}

func propertyView(p domain.Property) PropertyView {
	return PropertyView{
		ID:              p.ID.String(),
		Reference:       p.Reference,
		Title:           p.Title,
		Type:            p.Type,
		Status:          string(p.Status),
		Price:           p.Price,
		Address:         p.Address.String(),
		City:            p.Address.City,
		Characteristics: p.Characteristics,
		Label:           p.Label(),
	}
}

func contractView(c domain.Contract) ContractView {
	return ContractView{
		ID:         c.ID.String(),
		Type:       string(c.Type),
		Status:     string(c.Status),
		PropertyID: c.PropertyID.String(),
		ContactID:  c.ContactID.String(),
		Terms:      c.Data,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  c.UpdatedAt.Format(time.RFC3339),
	}
}

func taskView(t domain.Task) TaskView {
	return TaskView{
		ID:       t.ID.String(),
		Title:    t.Title,
		DueDate:  t.DueDate.Format("2006-01-02"),
		Priority: string(t.Priority),
		Status:   string(t.Status),
	}
}

func visitView(v domain.Visit) VisitView {
	return VisitView{
		ID:              v.ID.String(),
		PropertyID:      v.PropertyID.String(),
		ContactID:       v.ContactID.String(),
		ScheduledAt:     v.ScheduledAt.Format(time.RFC3339),
		DurationMinutes: v.DurationMinutes,
		Status:          string(v.Status),
	}
}
