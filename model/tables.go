package model

import "inbound/sheet"

const (
	TableSkids        = "Inbound_Skids"
	TableStaging      = "Inbound_Staging"
	TableMasterLog    = "Master_Log"
	TableItemMaster   = "Item_Master"
	TablePOMaster     = "PO_Master"
	TableVerification = "Verification_Log"
)

// MasterLogSpacerRows is the number of blank rows Master_Log keeps between
// its header and the first data row.
const MasterLogSpacerRows = 1

// Field keys shared by the schemas below.
const (
	FieldSkidID       = "skid_id"
	FieldTxnID        = "txn_id"
	FieldFBPN         = "fbpn"
	FieldMFPN         = "mfpn"
	FieldProject      = "project"
	FieldSKU          = "sku"
	FieldQty          = "qty"
	FieldPONumber     = "po_number"
	FieldBOLNumber    = "bol_number"
	FieldManufacturer = "manufacturer"
	FieldPushNumber   = "push_number"
	FieldUOM          = "uom"
	FieldAssetType    = "asset_type"
	FieldTimestamp    = "timestamp"
	FieldExpectedQty  = "expected_qty"
	FieldActualQty    = "actual_qty"
	FieldVariance     = "variance"
	FieldBoxLabels    = "box_labels"
	FieldVerifiedBy   = "verified_by"
	FieldStatus       = "status"
	FieldCustomerPO   = "customer_po"
)

var SkidSchema = sheet.Schema{
	Table: TableSkids,
	Columns: []sheet.Column{
		{Field: FieldSkidID, Name: "Skid_ID", Required: true},
		{Field: FieldTxnID, Name: "TXN_ID", Aliases: []string{"Transaction_ID"}},
		{Field: FieldFBPN, Name: "FBPN"},
		{Field: FieldMFPN, Name: "MFPN"},
		{Field: FieldProject, Name: "Project"},
		{Field: FieldSKU, Name: "SKU"},
		{Field: FieldQty, Name: "Qty", Aliases: []string{"Quantity", "Expected_Qty"}},
		{Field: FieldPONumber, Name: "PO_Number", Aliases: []string{"Customer_PO_Number"}},
		{Field: FieldBOLNumber, Name: "BOL_Number"},
	},
}

var StagingSchema = sheet.Schema{
	Table: TableStaging,
	Columns: []sheet.Column{
		{Field: FieldSkidID, Name: "Skid_ID"},
		{Field: FieldPushNumber, Name: "Push_Number", Aliases: []string{"Push_No"}},
		{Field: FieldManufacturer, Name: "Manufacturer"},
	},
}

// MasterLogSchema is the lookup view used for enrichment; every column is
// optional there.
var MasterLogSchema = sheet.Schema{
	Table: TableMasterLog,
	Columns: []sheet.Column{
		{Field: FieldTxnID, Name: "TXN_ID", Aliases: []string{"Transaction_ID"}},
		{Field: FieldManufacturer, Name: "Manufacturer"},
		{Field: FieldPushNumber, Name: "Push_Number", Aliases: []string{"Push_No"}},
		{Field: FieldProject, Name: "Project"},
		{Field: FieldPONumber, Name: "Customer_PO_Number"},
	},
}

// MasterLogBackfillSchema is the view the project backfill needs.
var MasterLogBackfillSchema = sheet.Schema{
	Table: TableMasterLog,
	Columns: []sheet.Column{
		{Field: FieldProject, Name: "Project", Required: true},
		{Field: FieldPONumber, Name: "Customer_PO_Number", Required: true},
	},
}

var ItemMasterSchema = sheet.Schema{
	Table: TableItemMaster,
	Columns: []sheet.Column{
		{Field: FieldSKU, Name: "SKU"},
		{Field: FieldFBPN, Name: "FBPN"},
		{Field: FieldUOM, Name: "UOM"},
		{Field: FieldAssetType, Name: "Asset_Type"},
	},
}

var POMasterSchema = sheet.Schema{
	Table: TablePOMaster,
	Columns: []sheet.Column{
		{Field: FieldCustomerPO, Name: "Customer_PO", Required: true},
		{Field: FieldProject, Name: "Project", Required: true},
	},
}

// VerificationSchema lists the canonical Verification_Log header in order.
// Status is read and written only when a sheet already carries the column;
// it is not part of the canonical header.
var VerificationSchema = sheet.Schema{
	Table: TableVerification,
	Columns: []sheet.Column{
		{Field: FieldTimestamp, Name: "Timestamp"},
		{Field: FieldBOLNumber, Name: "BOL_Number"},
		{Field: FieldPONumber, Name: "PO_Number"},
		{Field: FieldAssetType, Name: "Asset_Type"},
		{Field: FieldManufacturer, Name: "Manufacturer"},
		{Field: FieldMFPN, Name: "MFPN"},
		{Field: FieldFBPN, Name: "FBPN"},
		{Field: FieldUOM, Name: "UOM"},
		{Field: FieldExpectedQty, Name: "Expected_Qty"},
		{Field: FieldActualQty, Name: "Actual_Qty", Aliases: []string{"Actual_Qty_Total"}},
		{Field: FieldVariance, Name: "Variance"},
		{Field: FieldBoxLabels, Name: "Box_Labels"},
		{Field: FieldVerifiedBy, Name: "Verified_By", Aliases: []string{"User"}},
		{Field: FieldSkidID, Name: "Skid_ID"},
		{Field: FieldTxnID, Name: "TXN_ID"},
	},
}

// VerificationReadSchema adds the optional Status column.
var VerificationReadSchema = sheet.Schema{
	Table:   TableVerification,
	Columns: append(append([]sheet.Column(nil), VerificationSchema.Columns...), sheet.Column{Field: FieldStatus, Name: "Status"}),
}

// VerificationHeader is the header a freshly created Verification_Log gets.
func VerificationHeader() []string {
	return VerificationSchema.Header()
}
