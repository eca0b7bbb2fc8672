// Package codemeta provides the predicate vocabulary used by the crosswalk graph engine.
//
// The vocabulary maps short property names as they appear in package manifests
// ("name", "author", "developmentStatus") onto schema.org and CodeMeta IRIs, and
// records the insertion policy for each predicate:
//   - Singular: at most one value per subject, later writes replace earlier ones
//   - Ordered: values form a sequence and are serialized as a JSON-LD list
//   - NoEmbed: taxonomic relations that framing leaves as bare references
//   - IRIRange: string values are resources, not literals
//
// # Explicit State
//
// A Vocabulary is a value owned by its caller. There is no package-level registry;
// NewVocabulary returns a fresh vocabulary with the default CodeMeta terms registered,
// and custom predicates are added with Register:
//
//	vocab := codemeta.NewVocabulary()
//	err := vocab.Register("packageId",
//	    codemeta.WithIRI(codemeta.CustomNamespace+"packageId"),
//	    codemeta.WithDescription("Ecosystem-specific package identifier"),
//	    codemeta.WithSingular())
//
// # Value Mappings
//
// StatusIRI maps free-text development status values (including Trove
// "Development Status :: 5 - Production/Stable" classifiers) onto repostatus.org
// terms. LicenseIRI resolves license strings against an ordered rule table onto
// SPDX license IRIs; the first matching rule wins.
package codemeta
