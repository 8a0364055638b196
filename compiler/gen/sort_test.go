package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/xrmgen/compiler/load"
)

func TestSortEntities(t *testing.T) {
	entities := Resolve(mapTest(testRecords(), load.Names(testRecords())...))
	SortEntities(entities)

	assert.Equal(t, []string{"account", "activityparty", "contact", "email", "lead", "opportunity"}, entityNames(entities))

	account := entities[0]
	assert.Equal(t, []string{"accountid", "name", "customstatus", "industrycode", "primarycontactid"}, fieldNames(account.Fields),
		"fields are ordered by display name: Account, Account Name, Custom Status, Industry, Primary Contact")
	assert.Equal(t, []string{"account_email", "contact_customer_accounts", "opportunity_parent_account"}, relNames(account.OneToMany))
	require.Len(t, account.Enums, 2)
	assert.Equal(t, "Custom Status", account.Enums[0].DisplayName)
	assert.Equal(t, "Industry", account.Enums[1].DisplayName)
	assert.Equal(t, 2, account.Enums[1].Options[0].Value, "options keep their order")

	opp := entities[5]
	assert.Equal(t, []string{"opportunity_originating_lead", "opportunity_parent_account"}, relNames(opp.ManyToOne))

	contact := entities[2]
	assert.Equal(t, []string{"contactleads_association", "accountcontacts_association"}, relNames(contact.ManyToMany),
		"many-to-many relationships keep their order")
}

func TestSortTieBreak(t *testing.T) {
	entities := []*Entity{
		{LogicalName: "new_b", DisplayName: "Project"},
		{LogicalName: "new_a", DisplayName: "Project"},
		{LogicalName: "new_d", DisplayName: "Budget"},
	}
	SortEntities(entities)
	assert.Equal(t, "new_d", entities[0].LogicalName)
	assert.Equal(t, "new_a", entities[1].LogicalName, "equal display names fall back to logical names")
	assert.Equal(t, "new_b", entities[2].LogicalName)
}

func TestSortIdempotent(t *testing.T) {
	entities := Resolve(mapTest(testRecords(), load.Names(testRecords())...))
	SortEntities(entities)
	snapshot := snapshotOrder(entities)

	SortEntities(entities)
	assert.Equal(t, snapshot, snapshotOrder(entities))

	enums := GlobalEnums(entities)
	enums = append(enums, &Enum{DisplayName: "Budget Status", GlobalName: "budget", IsGlobal: true})
	SortEnums(enums)
	assert.Equal(t, "Budget Status", enums[0].DisplayName)
	first := append([]*Enum(nil), enums...)
	SortEnums(enums)
	assert.Equal(t, first, enums)
}

func TestSortDeterministicAcrossInputOrder(t *testing.T) {
	records := testRecords()
	reversed := make([]*load.Entity, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}
	a := Resolve(mapTest(records, load.Names(records)...))
	b := Resolve(mapTest(reversed, load.Names(records)...))
	SortEntities(a)
	SortEntities(b)
	assert.Equal(t, snapshotOrder(a), snapshotOrder(b))
}

func snapshotOrder(entities []*Entity) []string {
	var out []string
	for _, e := range entities {
		out = append(out, "entity:"+e.LogicalName)
		for _, f := range e.Fields {
			out = append(out, "field:"+f.LogicalName)
		}
		for _, en := range e.Enums {
			out = append(out, "enum:"+en.LogicalName)
		}
		for _, kind := range []RelationshipKind{OneToMany, ManyToOne, ManyToMany} {
			for _, r := range e.Relationships(kind) {
				out = append(out, kind.String()+":"+r.LogicalName)
			}
		}
	}
	return out
}
