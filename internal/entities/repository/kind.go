package repository

// Kind describes the table layout of one name-keyed entity and the project
// join tables that reference it.
type Kind struct {
	Label      string
	Table      string
	IDColumn   string
	JoinTables []string
}

var (
	Agencies = Kind{
		Label:      "agency",
		Table:      "agencies",
		IDColumn:   "agency_id",
		JoinTables: []string{"project_agencies"},
	}
	ExecutingAgencies = Kind{
		Label:      "executing agency",
		Table:      "executing_agencies",
		IDColumn:   "executing_agency_id",
		JoinTables: []string{"project_executing_agencies"},
	}
	ImplementingEntities = Kind{
		Label:      "implementing entity",
		Table:      "implementing_entities",
		IDColumn:   "implementing_entity_id",
		JoinTables: []string{"project_implementing_entities"},
	}
	DeliveryPartners = Kind{
		Label:      "delivery partner",
		Table:      "delivery_partners",
		IDColumn:   "delivery_partner_id",
		JoinTables: []string{"project_delivery_partners"},
	}
	FundingSources = Kind{
		Label:      "funding source",
		Table:      "funding_sources",
		IDColumn:   "funding_source_id",
		JoinTables: []string{"project_funding_sources"},
	}
)
