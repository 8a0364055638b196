package gen

import (
	"slices"
	"sort"

	"github.com/syssam/xrmgen/compiler/load"
)

// ActivityParty is the logical name of the activity party entity. Activities
// reference it, so it joins any selection that holds an activity.
const ActivityParty = "activityparty"

// NonStandard lists the system entities that are hidden unless non-standard
// entities are explicitly included. The list is sorted.
var NonStandard = []string{
	"applicationfile",
	"asyncoperation",
	"attributemap",
	"audit",
	"authorizationserver",
	"bulkdeletefailure",
	"bulkdeleteoperation",
	"bulkoperationlog",
	"businessprocessflowinstance",
	"clientupdate",
	"columnmapping",
	"complexcontrol",
	"dependency",
	"dependencynode",
	"displaystring",
	"displaystringmap",
	"documentindex",
	"duplicaterecord",
	"duplicaterulecondition",
	"emailsearch",
	"entitymap",
	"exchangesyncidmapping",
	"importdata",
	"importentitymapping",
	"importjob",
	"importlog",
	"integrationstatus",
	"internaladdress",
	"invaliddependency",
	"lookupmapping",
	"mailboxstatistics",
	"metadatadifference",
	"multientitysearch",
	"multientitysearchentities",
	"ownermapping",
	"partnerapplication",
	"picklistmapping",
	"pluginassembly",
	"plugintracelog",
	"plugintype",
	"principalattributeaccessmap",
	"principalentitymap",
	"principalobjectaccess",
	"principalobjectaccessreadsnapshot",
	"principalobjectattributeaccess",
	"processsession",
	"recordcountsnapshot",
	"ribboncommand",
	"ribboncontextgroup",
	"ribboncustomization",
	"ribbondiff",
	"ribbonrule",
	"ribbontabtocommandmap",
	"sdkmessage",
	"sdkmessagefilter",
	"sdkmessagepair",
	"sdkmessageprocessingstep",
	"sdkmessageprocessingstepimage",
	"sdkmessageprocessingstepsecureconfig",
	"sdkmessagerequest",
	"sdkmessagerequestfield",
	"sdkmessageresponse",
	"sdkmessageresponsefield",
	"serviceendpoint",
	"sqlencryptionaudit",
	"statusmap",
	"stringmap",
	"subscription",
	"subscriptionclients",
	"subscriptionmanuallytrackedobject",
	"subscriptionsyncinfo",
	"subscriptiontrackingdeletedobject",
	"systemapplicationmetadata",
	"systemuserbusinessunitentitymap",
	"systemuserprincipals",
	"traceassociation",
	"traceregarding",
	"transformationmapping",
	"transformationparametermapping",
	"unresolvedaddress",
	"userapplicationmetadata",
	"userentityinstancedata",
	"webwizard",
	"wizardaccessprivilege",
	"wizardpage",
	"workflowwaitsubscription",
}

// IsNonStandard reports if the entity is hidden by default.
func IsNonStandard(name string) bool {
	_, found := slices.BinarySearch(NonStandard, name)
	return found
}

// Selection is the set of entity logical names that take part in a mapping
// run.
type Selection struct {
	names []string
	set   map[string]struct{}
}

// NewSelection returns a selection of the given names, in the given order.
func NewSelection(names ...string) Selection {
	s := Selection{set: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if _, ok := s.set[n]; ok || n == "" {
			continue
		}
		s.set[n] = struct{}{}
		s.names = append(s.names, n)
	}
	return s
}

// Select computes the selection of a run. The keys of an override document
// replace the live selection entirely. Otherwise the live selection is used
// as is: its names were picked deliberately, so non-standard entities in it
// are honored whatever IncludeNonStandard says. The flag only narrows the
// names offered for picking (see AvailableNames).
func Select(cfg Config) Selection {
	if cfg.Mapping != nil {
		return NewSelection(cfg.Mapping.Names()...)
	}
	return NewSelection(cfg.Entities...)
}

// Names returns the selected names in selection order.
func (s Selection) Names() []string { return slices.Clone(s.names) }

// Len returns the number of selected names.
func (s Selection) Len() int { return len(s.names) }

// Has reports if the name is selected.
func (s Selection) Has(name string) bool {
	_, ok := s.set[name]
	return ok
}

// FetchNames returns the names to request from the metadata source: the
// selection plus the activity party entity, so that activities can be
// satisfied without a second round trip.
func (s Selection) FetchNames() []string {
	names := s.Names()
	if !s.Has(ActivityParty) {
		names = append(names, ActivityParty)
	}
	return names
}

// Filter returns the records that belong to the selection, in record order.
// Unknown names are dropped silently. When a kept record is an activity or
// the activity party itself, the activity party record joins the result.
func (s Selection) Filter(records []*load.Entity) []*load.Entity {
	var (
		kept     []*load.Entity
		party    *load.Entity
		hasParty bool
		activity bool
	)
	for _, r := range records {
		if r == nil {
			continue
		}
		if r.LogicalName == ActivityParty && party == nil {
			party = r
		}
		if !s.Has(r.LogicalName) {
			continue
		}
		kept = append(kept, r)
		hasParty = hasParty || r.LogicalName == ActivityParty
		activity = activity || r.IsActivity || r.IsActivityParty
	}
	if activity && !hasParty && party != nil {
		kept = append(kept, party)
	}
	return kept
}

// AvailableNames returns the logical names of the records that can be
// selected, in ascending order. Non-standard entities are listed only when
// includeNonStandard is set.
func AvailableNames(records []*load.Entity, includeNonStandard bool) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		if r == nil || (!includeNonStandard && IsNonStandard(r.LogicalName)) {
			continue
		}
		names = append(names, r.LogicalName)
	}
	sort.Strings(names)
	return slices.Compact(names)
}
