package ticket

import (
	"time"
)

type ServiceTicket struct {
	ID            int64      `json:"service_id" db:"id"`
	SerialNumber  string     `json:"serial_number" db:"serial_number"`
	ServiceType   string     `json:"service_type" db:"service_type"`
	Complaint     string     `json:"complaint" db:"complaint"`
	Status        Status     `json:"status" db:"status"`
	AssignedTo    string     `json:"assigned_to" db:"assigned_to"`
	RegDate       time.Time  `json:"reg_date" db:"reg_date"`
	CompletedDate *time.Time `json:"completed_date,omitempty" db:"completed_date"`

	// указатели на файлы отчётов, какое поле заполняется - зависит от статуса
	ReportPath         string `json:"report_path,omitempty" db:"report_path"`
	FinalReportPath    string `json:"final_report_path,omitempty" db:"final_report_path"`
	InstallationReport string `json:"installation_report,omitempty" db:"installation_report"`
	PDFPath            string `json:"pdf_path,omitempty" db:"pdf_path"`
}

// продукт с гарантией, связь по серийному номеру
type Product struct {
	SerialNumber  string    `json:"serial_number" db:"serial_number"`
	Model         string    `json:"model" db:"model"`
	CustomerName  string    `json:"customer_name" db:"customer_name"`
	PurchaseDate  time.Time `json:"purchase_date" db:"purchase_date"`
	WarrantyUntil time.Time `json:"warranty_until" db:"warranty_until"`
}

// отчёт по установке, привязан к (service_id, статус на момент загрузки)
type InstallationReport struct {
	ID         int64     `json:"id" db:"id"`
	ServiceID  int64     `json:"service_id" db:"service_id"`
	Status     Status    `json:"status" db:"status"`
	Path       string    `json:"path" db:"path"`
	UploadedBy string    `json:"uploaded_by" db:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

type ServiceReport struct {
	ID         int64     `json:"id" db:"id"`
	ServiceID  int64     `json:"service_id" db:"service_id"`
	Path       string    `json:"path" db:"path"`
	UploadedBy string    `json:"uploaded_by" db:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

type Feedback struct {
	ID          int64     `json:"id" db:"id"`
	ServiceID   int64     `json:"service_id" db:"service_id"`
	Rating      int       `json:"rating" db:"rating"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type Status string

const StatusOpen Status = "OPEN"
const StatusPendingSpares Status = "PENDING FOR SPARES"
const StatusCompleted Status = "COMPLETED"
