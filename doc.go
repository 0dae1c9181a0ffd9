// Package pyext provides native extension compilation support for Python packages.
//
// This package is the Go equivalent of the distutils build_ext machinery for
// packages that wrap a pre-existing C/C++ library: it takes the compiler and
// linker configuration the host interpreter was built with, cleans it up, and
// drives the native toolchain to produce a loadable extension module.
//
// # Configuration Pipeline
//
// The inherited configuration is an explicit ConfigVars value that flows
// through each step and is never shared as process-wide state:
//
//  1. Detect - load sysconfig variables from the host interpreter
//  2. Sanitize - strip denylisted substrings (-O2, -DNDEBUG, ...) from every value
//  3. Platform rules - force a specific compiler pair on matching platforms
//  4. Environment - CC, CXX, CFLAGS, ... from the environment win
//
// # Basic Usage
//
//	pkg := &pyext.Package{
//	    Name:                "mymod",
//	    Version:             "1.0.0",
//	    LongDescriptionFile: "README.rst",
//	    Extensions: []*pyext.Extension{
//	        pyext.NewExtension(pyext.ExtensionSpec{
//	            Name:        "mymod",
//	            GlueSource:  "python/mymod.cpp",
//	            LibraryRoot: "src",
//	            LibraryFiles: []string{"a.cpp", "b.cpp"},
//	        }),
//	    },
//	}
//
//	dist, err := pyext.Setup(ctx, pkg, &pyext.BuildConfig{ProjectDir: "."})
//	if err != nil {
//	    return err
//	}
//	err = dist.Run(ctx, "build_ext")
//
// # Architecture
//
//	Distribution
//	├── build_ext  → BuilderFactory → NativeBuilder (C, C++)
//	├── test       → TestCommand → TestResolver (EntryTable, InterpreterResolver)
//	└── clean
//
// # Platform Support
//
// Linux, macOS and other POSIX systems with a GCC-compatible toolchain.
// Windows/MSVC is not supported.
package pyext
