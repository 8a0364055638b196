package gen

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/syssam/xrmgen/compiler/load"
)

func globalStatus() *load.OptionSet {
	return &load.OptionSet{
		Name:        "statuscode_global",
		DisplayName: "Custom Status",
		IsGlobal:    true,
		Options: []*load.Option{
			{Value: 1, Label: "Open"},
			{Value: 2, Label: "Closed"},
		},
	}
}

// testRecords returns a small organization: account, contact, opportunity,
// lead, an activity (email) and the activity party.
func testRecords() []*load.Entity {
	return []*load.Entity{
		{
			LogicalName:        "opportunity",
			DisplayName:        "Opportunity",
			PrimaryIDAttribute: "opportunityid",
			Attributes: []*load.Attribute{
				{LogicalName: "opportunityid", DisplayName: "Opportunity", Type: load.TypeUniqueidentifier, IsPrimaryID: true},
				{LogicalName: "name", DisplayName: "Topic", Type: load.TypeString},
				{LogicalName: "parentaccountid", DisplayName: "Account", Type: load.TypeLookup, Targets: []string{"account"}},
				{LogicalName: "parentaccountidname", DisplayName: "Account Name", Type: load.TypeString, AttributeOf: "parentaccountid"},
				{LogicalName: "originatingleadid", DisplayName: "Originating Lead", Type: load.TypeLookup, Targets: []string{"lead"}},
			},
			ManyToOne: []*load.Relationship{
				{SchemaName: "opportunity_parent_account", ReferencedEntity: "account", ReferencingEntity: "opportunity", ReferencingAttribute: "parentaccountid"},
				{SchemaName: "opportunity_originating_lead", ReferencedEntity: "lead", ReferencingEntity: "opportunity", ReferencingAttribute: "originatingleadid"},
			},
		},
		{
			LogicalName:        "account",
			DisplayName:        "Account",
			DisplayCollection:  "Accounts",
			PrimaryIDAttribute: "accountid",
			Attributes: []*load.Attribute{
				{LogicalName: "primarycontactid", DisplayName: "Primary Contact", Type: load.TypeLookup, Targets: []string{"contact"}},
				{LogicalName: "name", DisplayName: "Account Name", Type: load.TypeString, IsPrimaryName: true},
				{LogicalName: "accountid", DisplayName: "Account", Type: load.TypeUniqueidentifier, IsPrimaryID: true},
				{LogicalName: "industrycode", DisplayName: "Industry", Type: load.TypePicklist, OptionSet: &load.OptionSet{
					Name: "account_industrycode",
					Options: []*load.Option{
						{Value: 2, Label: "Consulting"},
						{Value: 1, Label: "Accounting"},
					},
				}},
				{LogicalName: "customstatus", DisplayName: "Custom Status", Type: load.TypePicklist, OptionSet: globalStatus()},
			},
			OneToMany: []*load.Relationship{
				{SchemaName: "opportunity_parent_account", ReferencedEntity: "account", ReferencingEntity: "opportunity"},
				{SchemaName: "contact_customer_accounts", ReferencedEntity: "account", ReferencingEntity: "contact"},
				{SchemaName: "account_email", ReferencedEntity: "account", ReferencingEntity: "email"},
			},
		},
		{
			LogicalName: "contact",
			DisplayName: "Contact",
			Attributes: []*load.Attribute{
				{LogicalName: "contactid", DisplayName: "Contact", Type: load.TypeUniqueidentifier, IsPrimaryID: true},
				{LogicalName: "fullname", DisplayName: "Full Name", Type: load.TypeString},
				{LogicalName: "parentcustomerid", DisplayName: "Company Name", Type: load.TypeCustomer, Targets: []string{"account", "contact"}},
				{LogicalName: "customstatus", DisplayName: "Status (custom)", Type: load.TypePicklist, OptionSet: globalStatus()},
			},
			ManyToOne: []*load.Relationship{
				{SchemaName: "contact_customer_accounts", ReferencedEntity: "account", ReferencingEntity: "contact"},
			},
			ManyToMany: []*load.Relationship{
				{SchemaName: "contactleads_association", Entity1LogicalName: "contact", Entity2LogicalName: "lead", IntersectEntityName: "contactleads"},
				{SchemaName: "accountcontacts_association", Entity1LogicalName: "account", Entity2LogicalName: "contact", IntersectEntityName: "accountcontacts"},
			},
		},
		{
			LogicalName: "lead",
			DisplayName: "Lead",
			Attributes: []*load.Attribute{
				{LogicalName: "subject", DisplayName: "Topic", Type: load.TypeString},
			},
		},
		{
			LogicalName: "email",
			DisplayName: "Email",
			IsActivity:  true,
			Attributes: []*load.Attribute{
				{LogicalName: "subject", DisplayName: "Subject", Type: load.TypeString},
				{LogicalName: "to", DisplayName: "To", Type: load.TypePartyList},
			},
		},
		{
			LogicalName:     "activityparty",
			DisplayName:     "Activity Party",
			IsActivityParty: true,
			Attributes: []*load.Attribute{
				{LogicalName: "partyid", DisplayName: "Party", Type: load.TypeLookup, Targets: []string{"account", "contact"}},
			},
		},
	}
}

// countingSource is a Source that counts its calls and can block them.
type countingSource struct {
	records load.Records
	err     error
	release chan struct{}

	calls    atomic.Int32
	allCalls atomic.Int32

	mu    sync.Mutex
	names [][]string
}

func newCountingSource(records []*load.Entity) *countingSource {
	return &countingSource{records: records}
}

func (s *countingSource) wait(ctx context.Context) error {
	if s.release == nil {
		return nil
	}
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *countingSource) Entities(ctx context.Context, names []string, unpublished bool) ([]*load.Entity, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.names = append(s.names, append([]string(nil), names...))
	s.mu.Unlock()
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.records.Entities(ctx, names, unpublished)
}

func (s *countingSource) AllEntities(ctx context.Context, unpublished bool) ([]*load.Entity, error) {
	s.allCalls.Add(1)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.records.AllEntities(ctx, unpublished)
}

func (s *countingSource) fetches() int {
	return int(s.calls.Load() + s.allCalls.Load())
}

func (s *countingSource) requested() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names
}

func entityNames(entities []*Entity) []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.LogicalName
	}
	return names
}

func fieldNames(fields []*Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.LogicalName
	}
	return names
}

func relNames(rels []*Relationship) []string {
	names := make([]string, len(rels))
	for i, r := range rels {
		names[i] = r.LogicalName
	}
	return names
}

func mapTest(records []*load.Entity, names ...string) []*Entity {
	entities, err := MapEntities(NewSelection(names...).Filter(records), nil)
	if err != nil {
		panic(err)
	}
	return entities
}
