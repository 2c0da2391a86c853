// Package schema holds the sheet layout shared by every tabular store driver.
package schema

import "github.com/garyjia/surat-menyurat/internal/application/port"

// Sheet names
const (
	SheetUsers        = "Users"
	SheetLetters      = "Letters"
	SheetTemplates    = "Templates"
	SheetAwardees     = "Awardees"
	SheetPrograms     = "Programs"
	SheetMembers      = "Members"
	SheetTransactions = "Transactions"
	SheetPeriods      = "Periods"
	SheetDepartments  = "Departments"
	SheetLetterReads  = "LetterReads"
)

var (
	UserHeaders = []string{"id", "name", "email", "role", "passwordHash", "status", "approvedAt", "approvedById"}

	// LetterHeaders is the persisted column order of the Letters sheet.
	LetterHeaders = []string{
		"id", "referenceNumber", "type", "subject", "content", "status", "priority", "classification",
		"from", "to", "createdAt", "updatedAt", "createdBy", "sentAt", "receivedAt", "dueDate",
		"eventDate", "eventWaktu", "eventLocation", "eventAcara", "dispositionNote", "attachments", "approvalSteps", "statusHistory",
		"cc", "signatures", "forwardedTo", "fromDepartment", "contentJustification", "lineHeight", "letterSpacing", "fontFamily", "fontSize",
	}

	TemplateHeaders    = []string{"id", "name", "kind", "subjectTemplate", "contentTemplate", "category", "description"}
	AwardeeHeaders     = []string{"id", "name", "university", "major", "year", "status"}
	ProgramHeaders     = []string{"id", "name", "department", "status", "progress", "startDate", "endDate", "pic"}
	MemberHeaders      = []string{"id", "userId", "periodId", "name", "role", "department", "email", "status"}
	TransactionHeaders = []string{"id", "description", "amount", "date", "category"}
	PeriodHeaders      = []string{"id", "name", "startDate", "endDate", "isActive"}
	DepartmentHeaders  = []string{"id", "name", "periodId", "sortOrder"}
	LetterReadHeaders  = []string{"userId", "letterId", "readAt"}
)

// Sheets lists every sheet in bootstrap order.
var Sheets = []string{
	SheetUsers, SheetLetters, SheetTemplates, SheetAwardees, SheetPrograms,
	SheetMembers, SheetTransactions, SheetPeriods, SheetDepartments, SheetLetterReads,
}

var headersBySheet = map[string][]string{
	SheetUsers:        UserHeaders,
	SheetLetters:      LetterHeaders,
	SheetTemplates:    TemplateHeaders,
	SheetAwardees:     AwardeeHeaders,
	SheetPrograms:     ProgramHeaders,
	SheetMembers:      MemberHeaders,
	SheetTransactions: TransactionHeaders,
	SheetPeriods:      PeriodHeaders,
	SheetDepartments:  DepartmentHeaders,
	SheetLetterReads:  LetterReadHeaders,
}

// Headers returns the column order for sheet, nil for unknown sheets.
func Headers(sheet string) []string {
	return headersBySheet[sheet]
}

var seedValues = map[string][][]string{
	SheetTemplates: {
		{"t1", "Permohonan Resmi", "surat", "Perihal: [isi perihal surat]",
			"Dengan hormat,\n\n[Paragraf pembuka – uraian singkat maksud surat.]\n\n[Paragraf isi – rincian atau permohonan.]\n\nDemikian disampaikan, atas perhatian dan kerja samanya diucapkan terima kasih.\n\nHormat kami,\n[Penandatangan]",
			"Permohonan Resmi", "Template untuk surat permohonan resmi kepada instansi atau pihak lain"},
		{"t2", "Pemberitahuan", "surat", "Pemberitahuan: [judul]",
			"Dengan hormat,\n\nBerikut kami sampaikan pemberitahuan mengenai [uraian].\n\nDemikian disampaikan.",
			"Permohonan Resmi", "Template untuk surat pemberitahuan resmi"},
		{"t3", "Undangan Rapat", "surat", "Undangan: [nama acara]",
			"Dengan hormat,\n\nKami mengundang Bapak/Ibu untuk hadir dalam [nama acara] pada [waktu dan tempat].\n\nDemikian undangan ini disampaikan.",
			"Permohonan Resmi", "Template untuk undangan rapat atau acara"},
		{"t4", "Nota Internal", "surat", "Nota: [perihal]", "[Isi nota internal]", "Internal", "Template internal organisasi"},
		{"t5", "Proposal", "proposal", "Judul Proposal", `{"latarBelakang":"","tujuan":"","anggaran":"","timeline":""}`, "Proposal", "Proposal kegiatan atau anggaran"},
	},
	SheetPeriods: {
		{"p1", "Kepengurusan 2024-2026", "2024-01-01", "2026-12-31", "true"},
	},
	SheetDepartments: {
		{"d1", "Pengurus Inti", "p1", "1"},
		{"d2", "Divisi Pendidikan", "p1", "2"},
		{"d3", "Divisi Sosial", "p1", "3"},
		{"d4", "Divisi Keuangan", "p1", "4"},
	},
}

// SeedValues returns the positional default rows written into a freshly
// created sheet.
func SeedValues(sheet string) [][]string {
	return seedValues[sheet]
}

// SeedRows returns SeedValues keyed by header.
func SeedRows(sheet string) []port.Row {
	headers := Headers(sheet)
	values := SeedValues(sheet)
	rows := make([]port.Row, 0, len(values))
	for _, v := range values {
		row := make(port.Row, len(headers))
		for i, h := range headers {
			if i < len(v) {
				row[h] = v[i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Values lays row out in header order, blank for absent keys.
func Values(headers []string, row port.Row) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = row[h]
	}
	return out
}

// MissingHeaders returns the entries of want absent from have, in want order.
// Used to extend legacy sheets without reordering their columns.
func MissingHeaders(have, want []string) []string {
	present := make(map[string]bool, len(have))
	for _, h := range have {
		present[h] = true
	}
	var missing []string
	for _, h := range want {
		if !present[h] {
			missing = append(missing, h)
		}
	}
	return missing
}

// Layout is the column order rows are written in: the sheet's own header
// row, followed by any wanted header it still lacks. An empty header row
// yields want.
func Layout(have, want []string) []string {
	if len(have) == 0 {
		return append([]string(nil), want...)
	}
	return append(append([]string(nil), have...), MissingHeaders(have, want)...)
}

// ToRows maps a header row plus data rows into keyed rows. Short rows are
// padded with "".
func ToRows(values [][]string) []port.Row {
	if len(values) < 2 {
		return []port.Row{}
	}
	headers := values[0]
	rows := make([]port.Row, 0, len(values)-1)
	for _, v := range values[1:] {
		row := make(port.Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(v) {
				row[h] = v[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}
