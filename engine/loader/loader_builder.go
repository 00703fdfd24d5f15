package loader

// ImporterBuilderOption is a functional option for configuring an Importer
// via NewImporter.
type ImporterBuilderOption func(*importer)

// NewImporter creates an Importer over the import tables supplied through
// options. The tables are referenced as-is, not copied; callers must not
// mutate them while the importer is in use.
//
// Parameters:
//   - options: a variadic list of ImporterBuilderOption functions to configure the Importer
//
// Returns:
//   - Importer: a new instance of Importer over the configured tables
func NewImporter(options ...ImporterBuilderOption) Importer {
	im := &importer{}
	for _, option := range options {
		option(im)
	}
	return im
}

// WithJoints is an option builder that sets the skeleton joint table.
//
// Parameters:
//   - joints: the joint rows, in pipeline order
//
// Returns:
//   - ImporterBuilderOption: a function that applies the joint table to an importer
func WithJoints(joints []ImportedJoint) ImporterBuilderOption {
	return func(im *importer) {
		im.joints = joints
	}
}

// WithClips is an option builder that appends clips to the clip table.
//
// Parameters:
//   - clips: the clips to append
//
// Returns:
//   - ImporterBuilderOption: a function that applies the clips to an importer
func WithClips(clips ...ImportedClip) ImporterBuilderOption {
	return func(im *importer) {
		im.clips = append(im.clips, clips...)
	}
}
