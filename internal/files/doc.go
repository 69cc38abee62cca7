// Package files finds loadable sales files on disk and stores uploaded
// files inside the configured data layout.
//
// Discovery expands directories given on the command line into their CSV
// and XLSX files. Manager writes HTTP uploads to the uploads directory under
// collision-free names and removes them once they are loaded.
package files
