package domain

type Prescription struct {
	ID           int64  `db:"id" json:"id"`
	PatientName  string `db:"patient_name" json:"patient_name"`
	PatientPhone string `db:"patient_phone" json:"patient_phone"`
	DoctorName   string `db:"doctor_name" json:"doctor_name"`
	Notes        string `db:"notes" json:"notes"`
	Items        string `db:"items" json:"items"`
	CreatedAt    string `db:"created_at" json:"created_at"`
}
