package endpoints

import (
	"strings"
	"testing"
)

func TestResolveLiteralPaths(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   string
	}{
		{
			name:   "user experiment item",
			target: Target{Principal: User, Resource: Experiment, PrincipalName: "alice", ResourceID: "exp1"},
			want:   "/api/2.0/mlflow/permissions/users/alice/experiments/exp1",
		},
		{
			name:   "group model pattern collection",
			target: Target{Principal: Group, Resource: Model, Pattern: true, PrincipalName: "g1"},
			want:   "/api/2.0/mlflow/permissions/groups/g1/registered-models-patterns",
		},
		{
			name:   "user prompt collection",
			target: Target{Principal: User, Resource: Prompt, PrincipalName: "bob"},
			want:   "/api/2.0/mlflow/permissions/users/bob/prompts",
		},
		{
			name:   "group experiment pattern item",
			target: Target{Principal: Group, Resource: Experiment, Pattern: true, PrincipalName: "ds", ResourceID: "7"},
			want:   "/api/2.0/mlflow/permissions/groups/ds/experiments-patterns/7",
		},
		{
			name:   "user gateway endpoint item",
			target: Target{Principal: User, Resource: GatewayEndpoint, PrincipalName: "alice", ResourceID: "chat"},
			want:   "/api/2.0/mlflow/permissions/users/alice/gateways/endpoints/chat",
		},
		{
			name:   "group gateway secret patterns",
			target: Target{Principal: Group, Resource: GatewaySecret, Pattern: true, PrincipalName: "ops"},
			want:   "/api/2.0/mlflow/permissions/groups/ops/gateways/secrets-patterns",
		},
		{
			name:   "user gateway model definitions",
			target: Target{Principal: User, Resource: GatewayModel, PrincipalName: "alice"},
			want:   "/api/2.0/mlflow/permissions/users/alice/gateways/model-definitions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.target); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveAllCombinations(t *testing.T) {
	for _, p := range []PrincipalKind{User, Group} {
		for _, r := range ResourceKinds {
			for _, pattern := range []bool{false, true} {
				for _, id := range []string{"", "x"} {
					got := Resolve(Target{Principal: p, Resource: r, Pattern: pattern, PrincipalName: "n", ResourceID: id})

					want := "/api/2.0/mlflow/permissions/" + p.Plural() + "/n/" + r.Segment()
					if pattern {
						want += "-patterns"
					}
					if id != "" {
						want += "/" + id
					}
					if got != want {
						t.Errorf("Resolve(%v, %v, pattern=%v, id=%q) = %q, want %q", p, r, pattern, id, got, want)
					}
				}
			}
		}
	}
}

func TestResolveEncodesSegments(t *testing.T) {
	got := Resolve(Target{Principal: User, Resource: Experiment, PrincipalName: "a/b", ResourceID: "c d"})
	want := "/api/2.0/mlflow/permissions/users/a%2Fb/experiments/c%20d"
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}

	plain := Resolve(Target{Principal: User, Resource: Experiment, PrincipalName: "alice@example.com"})
	if !strings.Contains(plain, "/users/alice@example.com/") {
		t.Errorf("expected email principal to pass through, got %q", plain)
	}
}

func TestResourcePrincipals(t *testing.T) {
	if got := ResourcePrincipals(Experiment, User, "a/b"); got != "/api/2.0/mlflow/permissions/experiments/a%2Fb/users" {
		t.Errorf("got %q", got)
	}
	if got := ResourcePrincipals(Model, Group, "my-model"); got != "/api/2.0/mlflow/permissions/registered-models/my-model/groups" {
		t.Errorf("got %q", got)
	}
	if got := ResourcePrincipals(GatewaySecret, User, "key"); got != "/api/2.0/mlflow/permissions/gateways/secrets/key/users" {
		t.Errorf("got %q", got)
	}
}

func TestStaticPaths(t *testing.T) {
	tests := map[Static]string{
		CurrentUser:      "/api/2.0/mlflow/permissions/users/current",
		Users:            "/api/2.0/mlflow/permissions/users",
		Groups:           "/api/2.0/mlflow/permissions/groups",
		ServiceAccounts:  "/api/2.0/mlflow/permissions/service-accounts",
		AccessToken:      "/api/2.0/mlflow/permissions/users/access-token",
		Experiments:      "/api/2.0/mlflow/permissions/experiments",
		Models:           "/api/2.0/mlflow/permissions/registered-models",
		Prompts:          "/api/2.0/mlflow/permissions/prompts",
		GatewayEndpoints: "/api/2.0/mlflow/permissions/gateways/endpoints",
		GatewaySecrets:   "/api/2.0/mlflow/permissions/gateways/secrets",
		GatewayModels:    "/api/2.0/mlflow/permissions/gateways/model-definitions",
		TrashExperiments: "/api/2.0/mlflow/permissions/trash/experiments",
		TrashRuns:        "/api/2.0/mlflow/permissions/trash/runs",
		TrashCleanup:     "/api/2.0/mlflow/permissions/trash/cleanup",
		Webhooks:         "/api/2.0/mlflow/webhooks",
	}
	for s, want := range tests {
		if got := s.Path(); got != want {
			t.Errorf("Static(%d).Path() = %q, want %q", int(s), got, want)
		}
	}
}

func TestDynamicPaths(t *testing.T) {
	if got := GroupMembers("data science"); got != "/api/2.0/mlflow/permissions/groups/data%20science/users" {
		t.Errorf("GroupMembers() = %q", got)
	}
	if got := WebhookTest("wh-1"); got != "/api/2.0/mlflow/webhooks/wh-1/test" {
		t.Errorf("WebhookTest() = %q", got)
	}
	if got := TrashRestore(TrashRuns, "r1"); got != "/api/2.0/mlflow/permissions/trash/runs/r1/restore" {
		t.Errorf("TrashRestore() = %q", got)
	}
	if got := ServiceAccount("bot"); got != "/api/2.0/mlflow/permissions/service-accounts/bot" {
		t.Errorf("ServiceAccount() = %q", got)
	}
}

func TestTrashRestorePanicsOnOtherCollections(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-trash collection")
		}
	}()
	TrashRestore(Webhooks, "x")
}

func TestRemoveTrailingSlashes(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/a/b/c/", "/a/b/c"},
		{"///", ""},
		{"", ""},
		{"/a", "/a"},
	}
	for _, tt := range tests {
		if got := RemoveTrailingSlashes(tt.in); got != tt.want {
			t.Errorf("RemoveTrailingSlashes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoin(t *testing.T) {
	tests := []struct{ base, path, want string }{
		{"/mlflow/", "/api/x", "/mlflow/api/x"},
		{"", "/api/x", "/api/x"},
		{"/mlflow", "api/x", "/mlflow/api/x"},
		{"/mlflow//", "", "/mlflow"},
	}
	for _, tt := range tests {
		if got := Join(tt.base, tt.path); got != tt.want {
			t.Errorf("Join(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestParseResourceKind(t *testing.T) {
	for _, k := range ResourceKinds {
		got, err := ParseResourceKind(k.String())
		if err != nil {
			t.Fatalf("ParseResourceKind(%q): %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseResourceKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if _, err := ParseResourceKind("runs"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
