package decision

import (
	"veridian-hq/callisto/pkg/hierarchy"
)

// Decision is the outcome of a privacy evaluation. There is no partial or
// unknown decision value: evaluation either grants, denies, or fails with
// an error.
type Decision string

const (
	// Grant allows the requested data access.
	Grant Decision = "grant"

	// Deny refuses the requested data access.
	Deny Decision = "deny"
)

// Valid reports whether d is one of the two decision values.
func (d Decision) Valid() bool {
	return d == Grant || d == Deny
}

// AccessRequest is an application's declared data need: which attributes
// it reads, for which purposes, and how long it retains the data.
type AccessRequest struct {
	// AttributeIDs are the requested data attribute nodes.
	AttributeIDs []hierarchy.NodeID `yaml:"attribute_ids" json:"attributeIds"`

	// PurposeIDs are the declared processing purpose nodes.
	PurposeIDs []hierarchy.NodeID `yaml:"purpose_ids" json:"purposeIds"`

	// RetentionSeconds is how long the requester retains the data.
	RetentionSeconds int64 `yaml:"retention_seconds" json:"retentionSeconds"`
}

// Preference is a subject's privacy constraints over the same taxonomy.
// Each dimension carries an allow list, an exception list carving holes
// out of the allow list, and a deny list that always wins.
type Preference struct {
	// AllowedAttributeIDs cover the attribute subtrees the subject permits.
	AllowedAttributeIDs []hierarchy.NodeID `yaml:"allowed_attribute_ids" json:"allowedAttributeIds"`

	// ExceptedAttributeIDs carve exceptions out of the allowed attributes.
	ExceptedAttributeIDs []hierarchy.NodeID `yaml:"excepted_attribute_ids" json:"exceptedAttributeIds"`

	// DeniedAttributeIDs are attribute subtrees the subject always refuses.
	DeniedAttributeIDs []hierarchy.NodeID `yaml:"denied_attribute_ids" json:"deniedAttributeIds"`

	// AllowedPurposeIDs cover the purpose subtrees the subject permits.
	AllowedPurposeIDs []hierarchy.NodeID `yaml:"allowed_purpose_ids" json:"allowedPurposeIds"`

	// ExceptedPurposeIDs carve exceptions out of the allowed purposes.
	ExceptedPurposeIDs []hierarchy.NodeID `yaml:"excepted_purpose_ids" json:"exceptedPurposeIds"`

	// DeniedPurposeIDs are purpose subtrees the subject always refuses.
	DeniedPurposeIDs []hierarchy.NodeID `yaml:"denied_purpose_ids" json:"deniedPurposeIds"`

	// RetentionSeconds is the longest retention period the subject accepts.
	RetentionSeconds int64 `yaml:"retention_seconds" json:"retentionSeconds"`
}
