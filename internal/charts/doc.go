// Package charts turns sales tables and forecast results into
// renderer-neutral chart data: labelled series of points that the web
// front end, the HTML report and the CLI can draw however they like.
//
// Every builder validates its input first and returns a GRAPH error when the
// table is empty, too short, or lacks a column the chart needs.
package charts
