package model

import (
	"strings"
	"testing"
)

func validReenter() ReenterRequest {
	return ReenterRequest{
		PlayerID:          "p1",
		Region:            "de",
		PoolName:          PoolPvPCasual,
		GameVersion:       "1.0.3.25",
		GameContour:       "prod",
		DesiredMatchGroup: "PoolAlpha",
		Faction:           "LoyalSpaceMarines",
		PartyMembers:      []string{"p1", "p2"},
	}
}

func TestReenterValidateOK(t *testing.T) {
	req := validReenter()
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestReenterValidateHeartbeat(t *testing.T) {
	req := validReenter()
	req.Faction = ""
	req.DesiredMatchGroup = ""
	req.PartyMembers = nil
	if err := req.Validate(); err != nil {
		t.Fatalf("heartbeat without entry fields should validate: %v", err)
	}
	if req.HasEntryFields() {
		t.Fatal("expected HasEntryFields to be false")
	}
}

func TestReenterValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ReenterRequest)
		wantErr string
	}{
		{"missing player", func(r *ReenterRequest) { r.PlayerID = "" }, "player_id"},
		{"missing region", func(r *ReenterRequest) { r.Region = "" }, "region"},
		{"bad pool", func(r *ReenterRequest) { r.PoolName = "ranked" }, "pool_name"},
		{"bad version", func(r *ReenterRequest) { r.GameVersion = "1.0.3" }, "game_version"},
		{"version too wide", func(r *ReenterRequest) { r.GameVersion = "1.0.3.2555" }, "game_version"},
		{"bad contour", func(r *ReenterRequest) { r.GameContour = "staging" }, "game_contour"},
		{"bad faction", func(r *ReenterRequest) { r.Faction = "Xenos" }, "faction"},
		{"bad match group", func(r *ReenterRequest) { r.DesiredMatchGroup = "PoolOmega" }, "desired_match_group"},
		{"party too large", func(r *ReenterRequest) { r.PartyMembers = []string{"p1", "a", "b", "c", "d"} }, "party size"},
		{"party leader mismatch", func(r *ReenterRequest) { r.PartyMembers = []string{"p9", "p1"} }, "party_members"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validReenter()
			tt.mutate(&req)
			err := req.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestReenterParty(t *testing.T) {
	req := validReenter()
	req.PartyMembers = nil
	got := req.Party()
	if len(got) != 1 || got[0] != "p1" {
		t.Errorf("expected solo party, got %v", got)
	}
}

func TestPoolID(t *testing.T) {
	got := PoolID("1.0.3.25", "prod", PoolPvPCasual)
	want := "1.0.3.25-prod:pvp_casual"
	if got != want {
		t.Errorf("PoolID = %q, want %q", got, want)
	}
}

func TestRegisterServerValidate(t *testing.T) {
	req := RegisterServerRequest{Region: "fi", ResourceUnits: 16, FreeResourceUnits: 8, FreeInstancesAmount: 4}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Region = ""
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for missing region")
	}
	req = RegisterServerRequest{Region: "fi", FreeResourceUnits: -1}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for negative units")
	}
}
