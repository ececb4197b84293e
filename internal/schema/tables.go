package schema

// Categorical domains shared by the registry and the synthesizers.
// Changing these changes generated output without touching generator code.
var (
	Industries = []string{
		"Fintech", "Healthcare", "E-commerce", "Manufacturing", "Logistics",
		"Education", "Media", "Real Estate", "Energy", "SaaS",
	}

	CompanySizes = []string{"1-10", "11-50", "51-200", "201-500", "500+"}

	Countries = []string{
		"United States", "United Kingdom", "Germany", "France", "Netherlands",
		"Canada", "Australia", "Sweden", "Spain", "Poland",
	}

	AcquisitionChannels = []string{
		"Referral", "Outbound", "Inbound", "Conference", "Partner", "RFP",
	}

	Roles = []string{
		"Backend Engineer", "Frontend Engineer", "Fullstack Engineer",
		"DevOps Engineer", "Data Engineer", "QA Engineer", "Designer",
		"Project Manager", "Solutions Architect", "Security Engineer",
	}

	Seniorities = []string{"Junior", "Mid", "Senior", "Lead", "Principal"}

	ProjectTypes = []string{
		"Web Application", "Mobile Application", "API Development",
		"Data Platform", "Cloud Migration", "Maintenance", "Audit",
	}

	ProjectStatuses = []string{
		"Planning", "In Progress", "On Hold", "Completed", "Cancelled",
	}

	Priorities = []string{"Low", "Medium", "High", "Critical"}

	AssignmentRoles = []string{"Lead", "Contributor", "Reviewer"}

	TicketTypes = []string{"Bug", "Feature", "Task", "Improvement", "Spike"}

	TicketStatuses = []string{
		"Open", "In Progress", "In Review", "Blocked", "Done",
	}

	InvoiceTypes = []string{
		"Project Milestone", "Monthly Retainer", "One-off", "Support",
	}

	PaymentStatuses = []string{
		"Paid", "Pending", "Overdue", "Partially Paid", "Disputed",
	}

	ContractTypes = []string{
		"MSA", "Retainer Agreement", "SOW", "NDA", "SLA",
	}

	RenewalTerms = []string{
		"Auto-renew 12 months", "Manual renewal", "One-time",
	}

	ContractStatuses = []string{"Pending", "Active", "Expired"}
)

// StoryPoints is the allowed estimation scale for tickets.
var StoryPoints = []int{1, 2, 3, 5, 8, 13, 21}

// RevenueBracket bounds annual revenue for a company size.
type RevenueBracket struct {
	Min float64
	Max float64
}

// RevenueBrackets maps company size to its annual revenue range.
// Revenue is determined by size; this is the root business correlation.
var RevenueBrackets = map[string]RevenueBracket{
	"1-10":    {Min: 50_000, Max: 500_000},
	"11-50":   {Min: 500_000, Max: 5_000_000},
	"51-200":  {Min: 5_000_000, Max: 50_000_000},
	"201-500": {Min: 50_000_000, Max: 200_000_000},
	"500+":    {Min: 200_000_000, Max: 1_000_000_000},
}

// RateRange bounds hourly rates for a seniority level.
type RateRange struct {
	Min float64
	Max float64
}

// HourlyRates maps seniority to its hourly rate range.
var HourlyRates = map[string]RateRange{
	"Junior":    {Min: 25, Max: 45},
	"Mid":       {Min: 45, Max: 75},
	"Senior":    {Min: 75, Max: 110},
	"Lead":      {Min: 100, Max: 150},
	"Principal": {Min: 130, Max: 200},
}

// SpecialistRoles earn a rate premium on top of the seniority range.
var SpecialistRoles = map[string]float64{
	"Solutions Architect": 1.25,
	"Security Engineer":   1.25,
	"Data Engineer":       1.25,
}

// RoleSkills maps a role to its skill pool.
var RoleSkills = map[string][]string{
	"Backend Engineer":    {"Go", "PostgreSQL", "Redis", "gRPC", "Kafka"},
	"Frontend Engineer":   {"TypeScript", "React", "Vue", "CSS", "Webpack"},
	"Fullstack Engineer":  {"Go", "TypeScript", "React", "PostgreSQL", "Docker"},
	"DevOps Engineer":     {"Kubernetes", "Terraform", "AWS", "CI/CD", "Prometheus"},
	"Data Engineer":       {"Python", "Spark", "Airflow", "dbt", "Snowflake"},
	"QA Engineer":         {"Cypress", "Playwright", "TestRail", "k6", "Selenium"},
	"Designer":            {"Figma", "Design Systems", "Prototyping", "UX Research"},
	"Project Manager":     {"Scrum", "Jira", "Roadmapping", "Stakeholder Management"},
	"Solutions Architect": {"System Design", "AWS", "Kubernetes", "Event Sourcing"},
	"Security Engineer":   {"Pentesting", "SAST", "Threat Modeling", "OAuth2"},
}

// TechStacks maps a project type to its candidate stacks.
var TechStacks = map[string][]string{
	"Web Application":    {"Go + React", "Rails + Hotwire", "Django + Vue", "Next.js"},
	"Mobile Application": {"Flutter", "React Native", "Swift + Kotlin"},
	"API Development":    {"Go + gRPC", "Go + REST", "Node + GraphQL"},
	"Data Platform":      {"Spark + Airflow", "dbt + Snowflake", "Kafka + Flink"},
	"Cloud Migration":    {"AWS", "GCP", "Azure", "Kubernetes"},
	"Maintenance":        {"Legacy PHP", "Rails", "Java Spring"},
	"Audit":              {"Security Review", "Architecture Review", "Cost Review"},
}

// PaymentStatusWeights is the fixed categorical distribution for invoice
// payment status.
var PaymentStatusWeights = map[string]float64{
	"Paid":           0.55,
	"Pending":        0.20,
	"Overdue":        0.15,
	"Partially Paid": 0.07,
	"Disputed":       0.03,
}

// Table name constants.
const (
	TableClients     = "clients"
	TableTeamMembers = "team_members"
	TableProjects    = "projects"
	TableAssignments = "project_assignments"
	TableTickets     = "tickets"
	TableInvoices    = "invoices"
	TableContracts   = "contracts"
)

// Default returns the registry for the agency business dataset.
// Tables are declared parents-first.
func Default() *Registry {
	return NewRegistry(
		&Table{
			Name:       TableClients,
			Prefix:     "CLT",
			PrimaryKey: "client_id",
			Columns: []Column{
				{Name: "client_id", Kind: KindID, Required: true},
				{Name: "company_name", Kind: KindText, Required: true},
				{Name: "industry", Kind: KindCategorical, Domain: Industries, Required: true},
				{Name: "company_size", Kind: KindCategorical, Domain: CompanySizes, Required: true},
				{Name: "annual_revenue", Kind: KindNumeric, Min: 50_000, Max: 1_000_000_000, Distribution: "lognormal", Required: true},
				{Name: "country", Kind: KindCategorical, Domain: Countries, Required: true},
				{Name: "contact_name", Kind: KindText},
				{Name: "contact_email", Kind: KindEmail, Required: true},
				{Name: "contact_phone", Kind: KindPhone},
				{Name: "acquisition_channel", Kind: KindCategorical, Domain: AcquisitionChannels},
				{Name: "risk_score", Kind: KindNumeric, Min: 0.1, Max: 1.0, Distribution: "normal", Required: true},
				{Name: "monthly_retainer", Kind: KindNumeric, Min: 1_000, Max: 150_000, Required: true},
				{Name: "client_since", Kind: KindDate, Required: true},
			},
		},
		&Table{
			Name:       TableTeamMembers,
			Prefix:     "EMP",
			PrimaryKey: "member_id",
			Columns: []Column{
				{Name: "member_id", Kind: KindID, Required: true},
				{Name: "full_name", Kind: KindText, Required: true},
				{Name: "email", Kind: KindEmail, Required: true},
				{Name: "role", Kind: KindCategorical, Domain: Roles, Required: true},
				{Name: "seniority", Kind: KindCategorical, Domain: Seniorities, Required: true},
				{Name: "hourly_rate", Kind: KindNumeric, Min: 25, Max: 250, Required: true},
				{Name: "skills", Kind: KindText},
				{Name: "availability", Kind: KindNumeric, Min: 0.2, Max: 1.0, Required: true},
				{Name: "hire_date", Kind: KindDate, Required: true},
			},
		},
		&Table{
			Name:       TableProjects,
			Prefix:     "PRJ",
			PrimaryKey: "project_id",
			Columns: []Column{
				{Name: "project_id", Kind: KindID, Required: true},
				{Name: "client_id", Kind: KindID, Required: true},
				{Name: "name", Kind: KindText, Required: true},
				{Name: "project_type", Kind: KindCategorical, Domain: ProjectTypes, Required: true},
				{Name: "tech_stack", Kind: KindText},
				{Name: "status", Kind: KindCategorical, Domain: ProjectStatuses, Required: true},
				{Name: "priority", Kind: KindCategorical, Domain: Priorities},
				{Name: "start_date", Kind: KindDate, Required: true},
				{Name: "planned_end_date", Kind: KindDate},
				{Name: "actual_end_date", Kind: KindDate},
				{Name: "budget_original", Kind: KindNumeric, Min: 500, Max: 1_000_000, Required: true},
				{Name: "budget_final", Kind: KindNumeric, Min: 500, Max: 1_500_000},
				{Name: "hours_estimated", Kind: KindNumeric, Min: 10, Max: 20_000, Required: true},
				{Name: "hours_actual", Kind: KindNumeric, Min: 0, Max: 40_000},
				{Name: "team_size", Kind: KindInteger, Min: 2, Max: 10, Required: true},
				{Name: "complexity_score", Kind: KindInteger, Min: 1, Max: 10, Required: true},
			},
			ForeignKeys: []ForeignKey{
				{Column: "client_id", RefTable: TableClients, RefColumn: "client_id"},
			},
		},
		&Table{
			Name:       TableAssignments,
			Prefix:     "ASG",
			PrimaryKey: "assignment_id",
			Columns: []Column{
				{Name: "assignment_id", Kind: KindID, Required: true},
				{Name: "project_id", Kind: KindID, Required: true},
				{Name: "member_id", Kind: KindID, Required: true},
				{Name: "role_on_project", Kind: KindCategorical, Domain: AssignmentRoles, Required: true},
				{Name: "allocated_hours", Kind: KindNumeric, Min: 1, Max: 10_000, Required: true},
				{Name: "logged_hours", Kind: KindNumeric, Min: 0, Max: 12_000},
			},
			ForeignKeys: []ForeignKey{
				{Column: "project_id", RefTable: TableProjects, RefColumn: "project_id"},
				{Column: "member_id", RefTable: TableTeamMembers, RefColumn: "member_id"},
			},
		},
		&Table{
			Name:       TableTickets,
			Prefix:     "TKT",
			PrimaryKey: "ticket_id",
			Columns: []Column{
				{Name: "ticket_id", Kind: KindID, Required: true},
				{Name: "project_id", Kind: KindID, Required: true},
				{Name: "assignee_id", Kind: KindID, Required: true},
				{Name: "ticket_type", Kind: KindCategorical, Domain: TicketTypes, Required: true},
				{Name: "priority", Kind: KindCategorical, Domain: Priorities},
				{Name: "status", Kind: KindCategorical, Domain: TicketStatuses, Required: true},
				{Name: "story_points", Kind: KindInteger, Min: 1, Max: 21, Required: true},
				{Name: "estimated_hours", Kind: KindNumeric, Min: 1, Max: 100},
				{Name: "actual_hours", Kind: KindNumeric, Min: 0, Max: 200},
				{Name: "created_date", Kind: KindDate, Required: true},
				{Name: "completed_date", Kind: KindDate},
			},
			ForeignKeys: []ForeignKey{
				{Column: "project_id", RefTable: TableProjects, RefColumn: "project_id"},
				{Column: "assignee_id", RefTable: TableTeamMembers, RefColumn: "member_id"},
			},
		},
		&Table{
			Name:       TableInvoices,
			Prefix:     "INV",
			PrimaryKey: "invoice_id",
			Columns: []Column{
				{Name: "invoice_id", Kind: KindID, Required: true},
				{Name: "client_id", Kind: KindID, Required: true},
				{Name: "project_id", Kind: KindID},
				{Name: "invoice_type", Kind: KindCategorical, Domain: InvoiceTypes, Required: true},
				{Name: "issue_date", Kind: KindDate, Required: true},
				{Name: "due_date", Kind: KindDate, Required: true},
				{Name: "amount_gross", Kind: KindNumeric, Min: 100, Max: 2_000_000, Required: true},
				{Name: "tax_amount", Kind: KindNumeric, Min: 0, Max: 400_000, Required: true},
				{Name: "amount_net", Kind: KindNumeric, Min: 100, Max: 2_000_000, Required: true},
				{Name: "payment_status", Kind: KindCategorical, Domain: PaymentStatuses, Required: true},
				{Name: "payment_date", Kind: KindDate},
			},
			ForeignKeys: []ForeignKey{
				{Column: "client_id", RefTable: TableClients, RefColumn: "client_id"},
				{Column: "project_id", RefTable: TableProjects, RefColumn: "project_id", Nullable: true},
			},
		},
		&Table{
			Name:       TableContracts,
			Prefix:     "CTR",
			PrimaryKey: "contract_id",
			Columns: []Column{
				{Name: "contract_id", Kind: KindID, Required: true},
				{Name: "client_id", Kind: KindID, Required: true},
				{Name: "contract_type", Kind: KindCategorical, Domain: ContractTypes, Required: true},
				{Name: "start_date", Kind: KindDate, Required: true},
				{Name: "end_date", Kind: KindDate, Required: true},
				{Name: "contract_value", Kind: KindNumeric, Min: 0, Max: 5_000_000, Required: true},
				{Name: "renewal_terms", Kind: KindCategorical, Domain: RenewalTerms},
				{Name: "status", Kind: KindCategorical, Domain: ContractStatuses, Required: true},
			},
			ForeignKeys: []ForeignKey{
				{Column: "client_id", RefTable: TableClients, RefColumn: "client_id"},
			},
		},
	)
}
