package domain

import "testing"

func TestCanTransitionFollowsStatusMachine(t *testing.T) {
	cases := []struct {
		from ContractStatus
		to   ContractStatus
		want bool
	}{
		{ContractDraft, ContractPending, true},
		{ContractDraft, ContractActive, false},
		{ContractDraft, ContractSigned, false},
		{ContractPending, ContractActive, true},
		{ContractActive, ContractPending, true},
		{ContractActive, ContractSigned, true},
		{ContractSigned, ContractCompleted, true},
		{ContractSigned, ContractActive, false},
		{ContractPending, ContractCompleted, false},

		// exits from any non-terminal state
		{ContractDraft, ContractCancelled, true},
		{ContractActive, ContractExpired, true},
		{ContractSigned, ContractCancelled, true},

		// terminal states are final
		{ContractCompleted, ContractCancelled, false},
		{ContractCancelled, ContractDraft, false},
		{ContractExpired, ContractPending, false},

		// no self loops, no unknown statuses
		{ContractPending, ContractPending, false},
		{ContractStatus("archived"), ContractPending, false},
		{ContractDraft, ContractStatus("archived"), false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestAllowedTransitionsIncludesExits(t *testing.T) {
	got := AllowedTransitions(ContractActive)
	want := map[ContractStatus]bool{
		ContractPending: true, ContractSigned: true, ContractCancelled: true, ContractExpired: true,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d transitions, got %v", len(want), got)
	}
	for _, s := range got {
		if !want[s] {
			t.Fatalf("unexpected transition %s", s)
		}
	}
	if AllowedTransitions(ContractCompleted) != nil {
		t.Fatal("terminal status should allow nothing")
	}
}

func TestContractTypeRules(t *testing.T) {
	if ContractMandate.DefaultContactType() != ContactSeller {
		t.Fatal("mandates should create sellers")
	}
	if ContractSaleExisting.DefaultContactType() != ContactBuyer {
		t.Fatal("sales should create buyers")
	}
	if !ContractSaleExisting.IsSale() || !ContractSaleVEFA.IsSale() {
		t.Fatal("sale contracts must be flagged as sales")
	}
	if ContractMandate.IsSale() || ContractRental.IsSale() {
		t.Fatal("mandates and rentals are not sales")
	}
}
