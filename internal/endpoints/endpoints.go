// Package endpoints maps logical backend operations to REST paths.
package endpoints

import (
	"fmt"
	"net/url"
	"strings"
)

// APIPrefix is the root of every permission and tracking endpoint.
const APIPrefix = "/api/2.0/mlflow"

const permissionsPrefix = APIPrefix + "/permissions"

// PrincipalKind identifies who holds a grant.
type PrincipalKind int

const (
	User PrincipalKind = iota
	Group
)

// Plural returns the path segment for the principal kind.
func (k PrincipalKind) Plural() string {
	switch k {
	case User:
		return "users"
	case Group:
		return "groups"
	default:
		panic(fmt.Sprintf("endpoints: unknown principal kind %d", int(k)))
	}
}

func (k PrincipalKind) String() string {
	switch k {
	case User:
		return "user"
	case Group:
		return "group"
	default:
		return fmt.Sprintf("PrincipalKind(%d)", int(k))
	}
}

// ResourceKind identifies what a grant applies to.
type ResourceKind int

const (
	Experiment ResourceKind = iota
	Model
	Prompt
	GatewayEndpoint
	GatewaySecret
	GatewayModel
)

// ResourceKinds lists every resource kind in display order.
var ResourceKinds = []ResourceKind{Experiment, Model, Prompt, GatewayEndpoint, GatewaySecret, GatewayModel}

// Segment returns the collection path segment for the resource kind.
func (k ResourceKind) Segment() string {
	switch k {
	case Experiment:
		return "experiments"
	case Model:
		return "registered-models"
	case Prompt:
		return "prompts"
	case GatewayEndpoint:
		return "gateways/endpoints"
	case GatewaySecret:
		return "gateways/secrets"
	case GatewayModel:
		return "gateways/model-definitions"
	default:
		panic(fmt.Sprintf("endpoints: unknown resource kind %d", int(k)))
	}
}

// String returns the short name used on the command line.
func (k ResourceKind) String() string {
	switch k {
	case Experiment:
		return "experiments"
	case Model:
		return "models"
	case Prompt:
		return "prompts"
	case GatewayEndpoint:
		return "gateway-endpoints"
	case GatewaySecret:
		return "gateway-secrets"
	case GatewayModel:
		return "gateway-models"
	default:
		return fmt.Sprintf("ResourceKind(%d)", int(k))
	}
}

// IsGateway reports whether the kind is an AI gateway object.
func (k ResourceKind) IsGateway() bool {
	return k == GatewayEndpoint || k == GatewaySecret || k == GatewayModel
}

// ParseResourceKind accepts the short names returned by String plus a few aliases.
func ParseResourceKind(s string) (ResourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "experiments", "experiment", "exp":
		return Experiment, nil
	case "models", "model", "registered-models":
		return Model, nil
	case "prompts", "prompt":
		return Prompt, nil
	case "gateway-endpoints", "endpoints":
		return GatewayEndpoint, nil
	case "gateway-secrets", "secrets":
		return GatewaySecret, nil
	case "gateway-models", "model-definitions":
		return GatewayModel, nil
	}
	return 0, fmt.Errorf("unknown resource kind %q", s)
}

// Target describes a single permission endpoint.
type Target struct {
	Principal     PrincipalKind
	Resource      ResourceKind
	Pattern       bool
	PrincipalName string
	// ResourceID is the resource identifier, or the pattern id for pattern
	// targets. Empty selects the collection.
	ResourceID string
}

// Resolve returns the REST path for t:
//
//	/api/2.0/mlflow/permissions/{users|groups}/{name}/{segment}[-patterns][/{id}]
//
// Every dynamic segment is percent-encoded.
func Resolve(t Target) string {
	var b strings.Builder
	b.WriteString(permissionsPrefix)
	b.WriteByte('/')
	b.WriteString(t.Principal.Plural())
	b.WriteByte('/')
	b.WriteString(url.PathEscape(t.PrincipalName))
	b.WriteByte('/')
	b.WriteString(t.Resource.Segment())
	if t.Pattern {
		b.WriteString("-patterns")
	}
	if t.ResourceID != "" {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(t.ResourceID))
	}
	return b.String()
}

// ResourcePrincipals returns the reverse-lookup path listing which principals
// of kind p hold grants on resource id.
func ResourcePrincipals(r ResourceKind, p PrincipalKind, id string) string {
	return permissionsPrefix + "/" + r.Segment() + "/" + url.PathEscape(id) + "/" + p.Plural()
}

// ResourceCollection returns the path listing all resources of kind r visible
// to the caller.
func ResourceCollection(r ResourceKind) string {
	return permissionsPrefix + "/" + r.Segment()
}
