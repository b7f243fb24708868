package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leadflowhq/lead-services/models"
)

const leadColumns = `id, first_name, last_name, company_name, company_website,
	phone_number, linkedin_url, email, email_verified, status, score, tier,
	assigned_to, last_contact_date, next_follow_up_date, conversation_summary,
	custom_data, created_at, updated_at`

// scanLead reads one lead row from either *sql.Row or *sql.Rows.
func scanLead(scan func(dest ...interface{}) error) (*models.Lead, error) {
	var lead models.Lead
	var assignedTo sql.NullString
	var lastContact, nextFollowUp sql.NullTime

	err := scan(
		&lead.ID, &lead.FirstName, &lead.LastName, &lead.CompanyName,
		&lead.CompanyWebsite, &lead.PhoneNumber, &lead.LinkedinURL,
		&lead.Email, &lead.EmailVerified, &lead.Status, &lead.Score,
		&lead.Tier, &assignedTo, &lastContact, &nextFollowUp,
		&lead.ConversationSummary, &lead.CustomData, &lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedTo.Valid {
		repID, err := uuid.Parse(assignedTo.String)
		if err != nil {
			return nil, fmt.Errorf("invalid assigned_to value: %w", err)
		}
		lead.AssignedTo = &repID
	}
	if lastContact.Valid {
		lead.LastContactDate = &lastContact.Time
	}
	if nextFollowUp.Valid {
		lead.NextFollowUpDate = &nextFollowUp.Time
	}
	return &lead, nil
}

// CreateLead starts a transaction to insert a new lead record. The caller
// publishes the creation event and then commits via CommitTransaction.
func (l *LeadDB) CreateLead(lead *models.Lead) (*sql.Tx, error) {
	tx, err := l.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	if lead.Status == "" {
		lead.Status = models.StatusNew
	}
	if lead.CustomData == nil {
		lead.CustomData = []byte(`{}`)
	}

	err = l.execQuery(tx, `
		INSERT INTO leads (id, first_name, last_name, company_name, company_website,
			phone_number, linkedin_url, email, email_verified, status, score, tier,
			assigned_to, conversation_summary, custom_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		lead.ID, lead.FirstName, lead.LastName, lead.CompanyName,
		lead.CompanyWebsite, lead.PhoneNumber, lead.LinkedinURL, lead.Email,
		lead.EmailVerified, lead.Status, lead.Score, lead.Tier,
		uuidOrNil(lead.AssignedTo), lead.ConversationSummary, lead.CustomData,
		lead.CreatedAt, lead.UpdatedAt)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error inserting lead: %w", err)
	}

	return tx, nil
}

// GetLead retrieves a single lead by ID.
func (l *LeadDB) GetLead(id uuid.UUID) (*models.Lead, error) {
	row := l.DB.QueryRow(`SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("error retrieving lead: %w", err)
	}
	return lead, nil
}

// GetLeadByEmail retrieves a lead by its unique email address.
func (l *LeadDB) GetLeadByEmail(email string) (*models.Lead, error) {
	row := l.DB.QueryRow(`SELECT `+leadColumns+` FROM leads WHERE email = $1`, email)
	lead, err := scanLead(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("error retrieving lead by email: %w", err)
	}
	return lead, nil
}

// GetLeadByPhoneDigits matches a lead by the digits of its phone number.
// Inbound WhatsApp numbers arrive without formatting, stored numbers may
// carry +, spaces or dashes.
func (l *LeadDB) GetLeadByPhoneDigits(digits string) (*models.Lead, error) {
	// An empty suffix would match every stored number.
	if digits == "" {
		return nil, fmt.Errorf("error retrieving lead by phone: %w", sql.ErrNoRows)
	}
	row := l.DB.QueryRow(`
		SELECT `+leadColumns+` FROM leads
		WHERE regexp_replace(phone_number, '[^0-9]', '', 'g') LIKE '%' || $1
		LIMIT 1`, digits)
	lead, err := scanLead(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("error retrieving lead by phone: %w", err)
	}
	return lead, nil
}

// CheckLeadExists reports whether a lead with the given email exists.
func (l *LeadDB) CheckLeadExists(email string) (bool, error) {
	var exists bool
	err := l.DB.QueryRow(`SELECT EXISTS (SELECT 1 FROM leads WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking lead existence: %w", err)
	}
	return exists, nil
}

// ListLeads retrieves leads matching the filter plus the unpaginated total.
func (l *LeadDB) ListLeads(filter models.LeadFilter) ([]models.Lead, int, error) {
	var conditions []string
	var args []interface{}

	add := func(cond string, val interface{}) {
		args = append(args, val)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Tier != "" {
		add("tier = $%d", filter.Tier)
	}
	if filter.AssignedTo != nil {
		add("assigned_to = $%d", *filter.AssignedTo)
	}
	if filter.Query != "" {
		add("(first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d OR company_name ILIKE $%[1]d)",
			"%"+filter.Query+"%")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := l.DB.QueryRow(`SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting leads: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM leads%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		leadColumns, where, len(args)-1, len(args))

	rows, err := l.DB.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, total, rows.Err()
}

// UpdateLead starts a transaction that replaces all mutable lead fields.
func (l *LeadDB) UpdateLead(lead *models.Lead) (*sql.Tx, error) {
	tx, err := l.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	lead.UpdatedAt = time.Now().UTC()
	res, err := tx.Exec(`
		UPDATE leads SET first_name = $2, last_name = $3, company_name = $4,
			company_website = $5, phone_number = $6, linkedin_url = $7,
			email = $8, email_verified = $9, status = $10, score = $11,
			tier = $12, assigned_to = $13, last_contact_date = $14,
			next_follow_up_date = $15, conversation_summary = $16,
			custom_data = $17, updated_at = $18
		WHERE id = $1`,
		lead.ID, lead.FirstName, lead.LastName, lead.CompanyName,
		lead.CompanyWebsite, lead.PhoneNumber, lead.LinkedinURL, lead.Email,
		lead.EmailVerified, lead.Status, lead.Score, lead.Tier,
		uuidOrNil(lead.AssignedTo), timeOrNil(lead.LastContactDate),
		timeOrNil(lead.NextFollowUpDate), lead.ConversationSummary,
		lead.CustomData, lead.UpdatedAt)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error updating lead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return nil, sql.ErrNoRows
	}

	return tx, nil
}

// DeleteLead removes a lead; conversations and meetings cascade.
func (l *LeadDB) DeleteLead(id uuid.UUID) error {
	res, err := l.DB.Exec(`DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting lead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TouchContact records a successful outbound contact and schedules the
// next follow-up.
func (l *LeadDB) TouchContact(id uuid.UUID, status models.LeadStatus, nextFollowUpDays int) error {
	now := time.Now().UTC()
	var next interface{}
	if nextFollowUpDays > 0 {
		next = now.AddDate(0, 0, nextFollowUpDays)
	}
	_, err := l.DB.Exec(`
		UPDATE leads SET status = $2, last_contact_date = $3,
			next_follow_up_date = $4, updated_at = $3
		WHERE id = $1`, id, status, now, next)
	if err != nil {
		return fmt.Errorf("error recording contact: %w", err)
	}
	return nil
}

// UpdateLeadSummary refreshes the rolling conversation summary.
func (l *LeadDB) UpdateLeadSummary(id uuid.UUID, summary string) error {
	_, err := l.DB.Exec(`
		UPDATE leads SET conversation_summary = $2, updated_at = now()
		WHERE id = $1`, id, summary)
	if err != nil {
		return fmt.Errorf("error updating summary: %w", err)
	}
	return nil
}

// GetLeadsForFollowUp returns leads whose follow-up date has passed and
// that are still in a contactable state.
func (l *LeadDB) GetLeadsForFollowUp(now time.Time) ([]models.Lead, error) {
	rows, err := l.DB.Query(`
		SELECT `+leadColumns+` FROM leads
		WHERE next_follow_up_date IS NOT NULL AND next_follow_up_date <= $1
		  AND status IN ($2, $3)
		ORDER BY next_follow_up_date`, now, models.StatusContacted, models.StatusFollowUp)
	if err != nil {
		return nil, fmt.Errorf("error retrieving follow-up leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("error scanning lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

// GetNewLeadsWithPhone returns untouched leads eligible for WhatsApp
// outreach.
func (l *LeadDB) GetNewLeadsWithPhone(limit int) ([]models.Lead, error) {
	rows, err := l.DB.Query(`
		SELECT `+leadColumns+` FROM leads
		WHERE status = $1 AND phone_number <> ''
		ORDER BY score DESC, created_at
		LIMIT $2`, models.StatusNew, limit)
	if err != nil {
		return nil, fmt.Errorf("error retrieving new leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("error scanning lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

// AssignLead links a lead to a rep and stamps the rep's rotation marker.
func (l *LeadDB) AssignLead(leadID, repID uuid.UUID) error {
	tx, err := l.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	err = l.execQuery(tx, `
		UPDATE leads SET assigned_to = $2, updated_at = now() WHERE id = $1`,
		leadID, repID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error assigning lead: %w", err)
	}

	err = l.execQuery(tx, `
		UPDATE sales_reps SET last_assigned_at = now() WHERE id = $1`, repID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error updating rep rotation: %w", err)
	}

	return tx.Commit()
}

func uuidOrNil(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func timeOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
