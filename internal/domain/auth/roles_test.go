package auth

import (
	"testing"
	"time"
)

func TestRolePermissions(t *testing.T) {
	if !HasPermission(RoleTeacher, PermAppraisalWrite) {
		t.Fatal("teachers must be able to write their own appraisals")
	}
	if HasPermission(RoleTeacher, PermAppraisalFinalize) {
		t.Fatal("teachers must not finalize appraisals")
	}
	if !HasPermission(RoleHR, PermAppraisalFinalize) {
		t.Fatal("hr must finalize appraisals")
	}
	if !HasPermission(RolePrincipal, PermKpiApprove) {
		t.Fatal("principals must approve kpi requests")
	}
	if HasPermission(RolePrincipal, PermConfigAdmin) {
		t.Fatal("principals must not administer configuration")
	}
	if HasPermission("unknown", PermAppraisalRead) {
		t.Fatal("unknown roles have no permissions")
	}
}

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken("secret", "u1", RoleHR, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != "u1" || claims.RoleName != RoleHR {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := ParseToken("wrong", token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}
