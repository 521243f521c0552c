package registry

import (
	"github.com/gcbaptista/go-artifact-index/index"
	"github.com/gcbaptista/go-artifact-index/model"
)

// ArtifactIndex is the schema of a registry index. Every key reads the
// artifact itself, and searches return it.
type ArtifactIndex struct {
	*index.Schema[*model.Artifact, *model.Artifact]

	ID       *index.IdentityKey[*model.Artifact, *ArtifactIndex]
	Version  *index.SemverKey[*model.Artifact, *ArtifactIndex]
	Summary  *index.StringKey[*model.Artifact, *ArtifactIndex]
	Tools    *index.StringKey[*model.Artifact, *ArtifactIndex]
	ToolPath *index.StringKey[*model.Artifact, *ArtifactIndex] // path of each exported tool, under Tools
}

// Index is the index type a registry keeps.
type Index = index.Index[*model.Artifact, *model.Artifact, *ArtifactIndex]

func newArtifactIndex(schema *index.Schema[*model.Artifact, *model.Artifact]) *ArtifactIndex {
	ai := &ArtifactIndex{Schema: schema}

	ai.ID = index.NewIdentityKey(schema, ai, func(a *model.Artifact) index.Values {
		return index.Scalar(a.ID)
	}, "id")
	ai.Version = index.NewSemverKey(schema, ai, func(a *model.Artifact) index.Values {
		return index.Scalar(a.Version)
	}, "version")
	ai.Summary = index.NewStringKey(schema, ai, func(a *model.Artifact) index.Values {
		return index.Scalar(a.Summary)
	}, "summary", "description")
	ai.Tools = index.NewStringKey(schema, ai, func(a *model.Artifact) index.Values {
		names := a.ToolNames()
		if names == nil {
			return index.None()
		}
		return index.Sequence(names...)
	}, "tools", "exports.tools")
	ai.ToolPath = ai.Tools.NestString(func(a *model.Artifact, tool string) index.Values {
		return index.Scalar(a.Exports.Tools[tool])
	}, "tools.path")

	return ai
}

// NewIndex creates an empty registry index.
func NewIndex() *Index {
	return index.New(newArtifactIndex)
}
