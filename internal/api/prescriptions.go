package api

import (
	"net/http"
	"strings"

	"pharmacare/p/domain"
)

type prescriptionRequest struct {
	PatientName  string `json:"patient_name"`
	PatientPhone string `json:"patient_phone"`
	DoctorName   string `json:"doctor_name"`
	Notes        string `json:"notes"`
	Items        string `json:"items"`
}

func (h *Handler) createPrescription(w http.ResponseWriter, r *http.Request) {
	var req prescriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.PatientName) == "" {
		respondError(w, http.StatusBadRequest, "patient_name is required")
		return
	}
	res, err := h.db.Exec(`INSERT INTO prescriptions (patient_name, patient_phone, doctor_name, notes, items) VALUES (?, ?, ?, ?, ?)`,
		req.PatientName, req.PatientPhone, req.DoctorName, req.Notes, req.Items)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create prescription")
		return
	}
	id, _ := res.LastInsertId()
	var p domain.Prescription
	if err := h.db.Get(&p, `SELECT * FROM prescriptions WHERE id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load prescription")
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handler) listPrescriptions(w http.ResponseWriter, r *http.Request) {
	query := `SELECT * FROM prescriptions`
	var args []any
	if patient := strings.TrimSpace(r.URL.Query().Get("patient")); patient != "" {
		query += ` WHERE patient_name LIKE ? OR patient_phone LIKE ?`
		like := "%" + patient + "%"
		args = append(args, like, like)
	}
	query += ` ORDER BY id DESC`

	prescriptions := []domain.Prescription{}
	if err := h.db.Select(&prescriptions, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list prescriptions")
		return
	}
	respondJSON(w, http.StatusOK, prescriptions)
}

func (h *Handler) deletePrescription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid prescription id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM prescriptions WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete prescription")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "prescription not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
