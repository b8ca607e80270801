// Package spooler hands rendered artifacts to operating system printers.
//
// Three backends implement Backend:
// - CupsBackend submits jobs with lp and enumerates printers with lpstat
// - WindowsVectorBackend prints PDFs through a chain of shell strategies
// - WindowsRasterBackend blits PNG labels onto a printer device context
//
// Dispatcher pairs a label backend with a document backend and caches the
// printer list. Every external effect goes through a small interface
// (CommandRunner, DeviceOpener, DefaultPrinterController, ShellPrinter,
// Sleeper) so the dispatch logic is exercised without a real spooler.
package spooler
