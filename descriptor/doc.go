// Package descriptor fetches and parses the metadata descriptors (Maven POM files)
// that supply publisher, description and license information for a dependency.
//
// Descriptors are looked up by [label.Coordinate] in Maven-layout repositories:
//
//	{repository}/
//	└── {group/as/path}/
//	    └── {name}/
//	        └── {version}/
//	            └── {name}-{version}.pom
//
// # Sources
//
// Three [Source] implementations are provided:
//
//   - [Client]: a remote repository over HTTP(S), with connection pooling and caching
//   - [Local]: a repository on the local file system (for example ~/.m2/repository)
//   - [Chain]: ordered fallback across several sources
//
// Use [NewSource] or [NewChain] to create sources from URLs; file:// URLs select a
// local repository.
//
// # Lookup
//
// Callers that treat every failure as "no metadata" use [Lookup], which collapses
// I/O, HTTP, parse and cancellation failures into a single tagged [Result]:
//
//	res := descriptor.Lookup(ctx, source, coord)
//	if !res.Found() {
//	    log.Printf("no descriptor for %s: %v", coord, res.Reason)
//	    return
//	}
//	fmt.Println(res.Descriptor.Organization.Name)
package descriptor
