package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/climate-finance-tracker/cft-backend/internal/projects/domain"
)

// scalarColumns is the column order used by every project and pending
// project read and write. numeric columns are coalesced to 0 on read, text
// columns to ''.
var scalarColumns = []struct {
	name    string
	numeric bool
}{
	{"title", false},
	{"type", false},
	{"sector", false},
	{"status", false},
	{"approval_fy", false},
	{"beginning", false},
	{"closing", false},
	{"total_cost_usd", true},
	{"grant_amount", true},
	{"loan_amount", true},
	{"co_financing", true},
	{"objectives", false},
	{"direct_beneficiaries", true},
	{"indirect_beneficiaries", true},
	{"beneficiary_description", false},
	{"gender_inclusion", false},
	{"equity_marker", false},
	{"alignment_nap", false},
	{"climate_relevance_score", true},
	{"supporting_document", false},
	{"supporting_link", false},
}

// insertColumns returns "title, type, ..." for an INSERT column list.
func insertColumns() string {
	names := make([]string, len(scalarColumns))
	for i, c := range scalarColumns {
		names[i] = c.name
	}
	return strings.Join(names, ", ")
}

// placeholders returns "$from, $from+1, ..." for n values.
func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ps, ", ")
}

// setClause returns "title = $from, type = $from+1, ..." for an UPDATE.
func setClause(from int) string {
	sets := make([]string, len(scalarColumns))
	for i, c := range scalarColumns {
		sets[i] = fmt.Sprintf("%s = $%d", c.name, from+i)
	}
	return strings.Join(sets, ", ")
}

// selectColumns returns the scalar select list with the given table alias.
func selectColumns(alias string) string {
	exprs := make([]string, len(scalarColumns))
	for i, c := range scalarColumns {
		if c.numeric {
			exprs[i] = fmt.Sprintf("COALESCE(%s.%s, 0)", alias, c.name)
		} else {
			exprs[i] = fmt.Sprintf("COALESCE(%s.%s, '')", alias, c.name)
		}
	}
	return strings.Join(exprs, ", ")
}

func scalarArgs(f *domain.Fields) []any {
	return []any{
		strings.TrimSpace(f.Title),
		nullString(f.Type),
		nullString(f.Sector),
		strings.TrimSpace(f.Status),
		strings.TrimSpace(f.ApprovalFY),
		nullString(f.Beginning),
		nullString(f.Closing),
		f.TotalCostUSD,
		f.GrantAmount,
		f.LoanAmount,
		f.CoFinancing,
		nullString(f.Objectives),
		f.DirectBeneficiaries,
		f.IndirectBeneficiaries,
		nullString(f.BeneficiaryDescription),
		nullString(f.GenderInclusion),
		nullString(f.EquityMarker),
		nullString(f.AlignmentNAP),
		f.ClimateRelevanceScore,
		nullString(f.SupportingDocument),
		nullString(f.SupportingLink),
	}
}

func scalarDest(f *domain.Fields) []any {
	return []any{
		&f.Title,
		&f.Type,
		&f.Sector,
		&f.Status,
		&f.ApprovalFY,
		&f.Beginning,
		&f.Closing,
		&f.TotalCostUSD,
		&f.GrantAmount,
		&f.LoanAmount,
		&f.CoFinancing,
		&f.Objectives,
		&f.DirectBeneficiaries,
		&f.IndirectBeneficiaries,
		&f.BeneficiaryDescription,
		&f.GenderInclusion,
		&f.EquityMarker,
		&f.AlignmentNAP,
		&f.ClimateRelevanceScore,
		&f.SupportingDocument,
		&f.SupportingLink,
	}
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
