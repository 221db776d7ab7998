// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nextmain/nextmain/pkg/manifest"
	"github.com/nextmain/nextmain/pkg/types"
)

const (
	// StageParentPackage is the lookup of the importer's own manifest.
	StageParentPackage Stage = iota + 1
	// StagePackageLookup is the mapping of the specifier to an installed package.
	StagePackageLookup
	// StageEntryPoint is the read of the target manifest's jsnext:main field.
	StageEntryPoint
	// StageCandidate is the existence check of the resolved entry file.
	StageCandidate
)

var (
	// ErrNoParentPackage means no package.json encloses the importing file.
	ErrNoParentPackage = errors.New("no parent package")
	// ErrPackageNotFound means the specifier names no installed package
	// visible from the importer's search context.
	ErrPackageNotFound = errors.New("package not found")
	// ErrMissingEntryPoint means the target manifest could not be loaded or
	// does not declare jsnext:main.
	ErrMissingEntryPoint = errors.New("missing " + manifest.EntryField + " entry point")
	// ErrCandidateNotFound means jsnext:main points at a file that does not exist.
	ErrCandidateNotFound = errors.New("entry point file not found")
)

type (
	// Stage identifies the resolution step that failed.
	Stage int

	// ResolveError reports why a specifier could not be resolved. It wraps
	// both the stage sentinel and the underlying cause, so errors.Is works
	// against either.
	ResolveError struct {
		Specifier types.Specifier
		Stage     Stage
		// Path is the path the failing stage was looking at: the importer's
		// directory, the target manifest, or the missing candidate file.
		Path  types.FilesystemPath
		Cause error
	}
)

// String returns a short stage name.
func (s Stage) String() string {
	switch s {
	case StageParentPackage:
		return "parent-package"
	case StagePackageLookup:
		return "package-lookup"
	case StageEntryPoint:
		return "entry-point"
	case StageCandidate:
		return "candidate"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Sentinel returns the sentinel error for the stage.
func (s Stage) Sentinel() error {
	switch s {
	case StageParentPackage:
		return ErrNoParentPackage
	case StagePackageLookup:
		return ErrPackageNotFound
	case StageEntryPoint:
		return ErrMissingEntryPoint
	case StageCandidate:
		return ErrCandidateNotFound
	default:
		return nil
	}
}

// Message returns the diagnostic headline for the failure, without the
// specifier or paths.
func (e *ResolveError) Message() string {
	switch e.Stage {
	case StageParentPackage:
		return "Parent module not found"
	case StagePackageLookup:
		return "Unable to resolve package information for module"
	case StageEntryPoint:
		return `External module without "` + manifest.EntryField + `" directive`
	case StageCandidate:
		return "Lookup fails for module"
	default:
		return "Resolution failed"
	}
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %q", strings.ToLower(e.Message()[:1])+e.Message()[1:], e.Specifier)
	if e.Path != "" {
		fmt.Fprintf(&sb, " at %q", e.Path)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap returns the stage sentinel and the cause.
func (e *ResolveError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Stage.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func stageError(spec types.Specifier, stage Stage, path types.FilesystemPath, cause error) *ResolveError {
	return &ResolveError{Specifier: spec, Stage: stage, Path: path, Cause: cause}
}
