// Package pycryptosat describes the Python binding of the CryptoMiniSat SAT
// solver: its metadata and the single native extension built from the
// solver's C++ sources.
package pycryptosat

import (
	"fmt"

	pyext "github.com/contriboss/python-extension-go"
)

const (
	// PackageVersion is the version of the Python binding.
	PackageVersion = "0.1.1"

	// LibraryVersion is the version of the wrapped CryptoMiniSat library.
	LibraryVersion = "5.0.1"

	// ModuleName is the name of the extension module.
	ModuleName = "pycryptosat"

	// GlueSource adapts the solver API to the Python C API.
	GlueSource = "python/pycryptosat.cpp"

	// LibraryRoot is the directory holding the solver sources.
	LibraryRoot = "src"

	// LongDescriptionFile is read when the distribution is set up.
	LongDescriptionFile = "python/README.rst"
)

// LibraryFiles lists the solver sources in build order. New sources must be
// added here; the directory is not scanned.
var LibraryFiles = []string{
	"GitSHA1.cpp",
	"cnf.cpp",
	"propengine.cpp",
	"varreplacer.cpp",
	"clausecleaner.cpp",
	"clauseusagestats.cpp",
	"prober.cpp",
	"occsimplifier.cpp",
	"subsumestrengthen.cpp",
	"clauseallocator.cpp",
	"sccfinder.cpp",
	"solverconf.cpp",
	"distillerallwithall.cpp",
	"distillerlongwithimpl.cpp",
	"str_impl_w_impl_stamp.cpp",
	"solutionextender.cpp",
	"completedetachreattacher.cpp",
	"searcher.cpp",
	"solver.cpp",
	"gatefinder.cpp",
	"sqlstats.cpp",
	"implcache.cpp",
	"stamp.cpp",
	"compfinder.cpp",
	"comphandler.cpp",
	"hyperengine.cpp",
	"subsumeimplicit.cpp",
	"cleaningstats.cpp",
	"datasync.cpp",
	"reducedb.cpp",
	"clausedumper.cpp",
	"bva.cpp",
	"intree.cpp",
	"features_calc.cpp",
	"features_to_reconf.cpp",
	"solvefeatures.cpp",
	"searchstats.cpp",
	"xorfinder.cpp",
	"cryptominisat_c.cpp",
	"cryptominisat.cpp",
	// TODO: gaussian.cpp and matrixfinder.cpp once the Gauss-Jordan
	// elimination module builds without M4RI.
}

// IncludeDirs are searched for the solver headers.
var IncludeDirs = []string{LibraryRoot, "."}

// LinkArgs match the link-time optimization and OpenMP of the compile flags.
var LinkArgs = []string{
	"-Ofast",
	"-flto",
	"-fopenmp",
}

// Classifiers are the trove classifiers of the package.
var Classifiers = []string{
	"Development Status :: 4 - Beta",
	"Intended Audience :: Developers",
	"Operating System :: OS Independent",
	"Programming Language :: C++",
	"Programming Language :: Python :: 2",
	"Programming Language :: Python :: 2.7",
	"Programming Language :: Python :: 3",
	"Programming Language :: Python :: 3.5",
	"License :: OSI Approved :: MIT License",
	"Topic :: Utilities",
}

// Extension returns the solver extension built with policy.
func Extension(policy pyext.FlagPolicy) *pyext.Extension {
	return pyext.NewExtension(pyext.ExtensionSpec{
		Name:         ModuleName,
		Language:     pyext.LanguageCXX,
		GlueSource:   GlueSource,
		LibraryRoot:  LibraryRoot,
		LibraryFiles: LibraryFiles,
		IncludeDirs:  IncludeDirs,
		CompileArgs:  policy.CompileArgs(),
		LinkArgs:     LinkArgs,
	})
}

// Package returns the pycryptosat distribution with the default flag policy.
func Package() *pyext.Package {
	return PackageWithPolicy(pyext.DefaultFlagPolicy())
}

// PackageWithPolicy returns the pycryptosat distribution built with policy.
func PackageWithPolicy(policy pyext.FlagPolicy) *pyext.Package {
	return &pyext.Package{
		Name:                ModuleName,
		Version:             PackageVersion,
		LibraryVersion:      LibraryVersion,
		Author:              "Mate Soos",
		AuthorEmail:         "soos.mate@gmail.com",
		URL:                 "https://github.com/msoos/cryptominisat",
		License:             "MIT",
		Classifiers:         Classifiers,
		Description:         fmt.Sprintf("Bindings to CryptoMiniSat %s (a SAT solver)", LibraryVersion),
		LongDescriptionFile: LongDescriptionFile,
		PyModules:           []string{ModuleName},
		Extensions:          []*pyext.Extension{Extension(policy)},
	}
}
