package perm

import "testing"

func admin() Identity {
	return Identity{
		ID:    1,
		Email: "admin@example.com",
		Roles: []string{RoleAdmin},
	}
}

func restricted() Identity {
	return Identity{
		ID:         2,
		Email:      "user@example.com",
		Visibility: VisibilityOwn,
		Permissions: map[Resource]Level{
			ResourceProxyHosts:   LevelManage,
			ResourceCertificates: LevelView,
		},
	}
}

func TestAdminOverridesEveryResource(t *testing.T) {
	for _, r := range Resources() {
		if !Has(admin(), r, LevelManage) {
			t.Fatalf("admin denied manage on %s", r)
		}
	}
}

func TestManageImpliesView(t *testing.T) {
	for _, r := range Resources() {
		for _, levels := range []map[Resource]Level{
			{r: LevelHidden},
			{r: LevelView},
			{r: LevelManage},
		} {
			id := Identity{Permissions: levels}
			if Has(id, r, LevelManage) && !Has(id, r, LevelView) {
				t.Fatalf("manage on %s did not imply view", r)
			}
		}
	}
}

func TestAbsentEntryDefaultsToHidden(t *testing.T) {
	id := restricted()
	if Has(id, ResourceStreams, LevelView) {
		t.Fatalf("expected streams hidden for identity without an entry")
	}
	if id.LevelFor(ResourceStreams) != LevelHidden {
		t.Fatalf("LevelFor(streams) = %v, want hidden", id.LevelFor(ResourceStreams))
	}
}

func TestCanAccessMapsActions(t *testing.T) {
	id := restricted()
	cases := []struct {
		resource Resource
		action   Action
		want     bool
	}{
		{ResourceProxyHosts, ActionView, true},
		{ResourceProxyHosts, ActionCreate, true},
		{ResourceProxyHosts, ActionEdit, true},
		{ResourceProxyHosts, ActionDelete, true},
		{ResourceCertificates, ActionView, true},
		{ResourceCertificates, ActionCreate, false},
		{ResourceCertificates, ActionEdit, false},
		{ResourceCertificates, ActionDelete, false},
		{ResourceUsers, ActionView, false},
	}
	for _, tc := range cases {
		if got := CanAccess(id, tc.resource, tc.action); got != tc.want {
			t.Fatalf("CanAccess(%s, %s) = %v, want %v", tc.resource, tc.action, got, tc.want)
		}
	}
}

func TestFilterOwnRecords(t *testing.T) {
	if FilterOwnRecords(admin()) {
		t.Fatalf("admin must never be own-record filtered")
	}
	if !FilterOwnRecords(restricted()) {
		t.Fatalf("restricted visibility identity must be filtered")
	}
	open := restricted()
	open.Visibility = VisibilityAll
	if FilterOwnRecords(open) {
		t.Fatalf("all-visibility identity must not be filtered")
	}
}

func TestResultsDependOnlyOnIdentityArgument(t *testing.T) {
	a := admin()
	b := restricted()
	// Interleaved calls with different identities must not influence each
	// other; this is what makes account switching safe.
	if !Has(a, ResourceUsers, LevelManage) {
		t.Fatalf("admin denied users manage")
	}
	if Has(b, ResourceUsers, LevelView) {
		t.Fatalf("restricted identity allowed users view")
	}
	if !Has(a, ResourceUsers, LevelManage) {
		t.Fatalf("admin result changed after evaluating another identity")
	}
}

func TestParseLevelRoundTrip(t *testing.T) {
	for _, l := range []Level{LevelHidden, LevelView, LevelManage} {
		if ParseLevel(l.String()) != l {
			t.Fatalf("ParseLevel(%q) != %v", l.String(), l)
		}
	}
	if ParseLevel("bogus") != LevelHidden {
		t.Fatalf("unknown level must parse as hidden")
	}
}
