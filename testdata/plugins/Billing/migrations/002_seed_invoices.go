package migrations

// SeedInvoices is registered in code, this file only declares its version.
