package domain

// Standard column names of a sales export
const (
	ColOrderDate    = "Order Date"
	ColShipDate     = "Ship Date"
	ColSales        = "Sales"
	ColProfit       = "Profit"
	ColQuantity     = "Quantity"
	ColDiscount     = "Discount"
	ColProductName  = "Product Name"
	ColOrderID      = "Order ID"
	ColCustomerName = "Customer Name"
	ColSegment      = "Segment"
	ColRegion       = "Region"
	ColCategory     = "Category"
	ColSubCategory  = "Sub-Category"
)

// RequiredColumns must be present before a table is trusted
var RequiredColumns = []string{ColOrderDate, ColSales, ColProfit, ColProductName}

// StandardColumns lists every column a full sales export carries.
// Ship Date is optional.
var StandardColumns = []string{
	ColOrderDate, ColShipDate, ColSales, ColProfit, ColQuantity, ColDiscount,
	ColProductName, ColOrderID, ColCustomerName, ColSegment, ColRegion,
	ColCategory, ColSubCategory,
}

// DateColumns are parsed to dates during cleaning
var DateColumns = []string{ColOrderDate, ColShipDate}

// NumericColumns are coerced to numbers during cleaning
var NumericColumns = []string{ColSales, ColProfit, ColQuantity, ColDiscount}

// NonNegativeColumns should not hold negative amounts
var NonNegativeColumns = []string{ColSales, ColQuantity}

// IsRequired reports whether column is one of RequiredColumns
func IsRequired(column string) bool {
	for _, c := range RequiredColumns {
		if c == column {
			return true
		}
	}
	return false
}

// SalesSummary holds the headline KPIs of a table
type SalesSummary struct {
	TotalSales   float64 `json:"total_sales"`
	TotalProfit  float64 `json:"total_profit"`
	ProfitMargin float64 `json:"profit_margin"`
	TotalOrders  int     `json:"total_orders"`
	Rows         int     `json:"rows"`
}

// ProductSales is one line of a product ranking
type ProductSales struct {
	ProductName string  `json:"product_name"`
	Sales       float64 `json:"sales"`
	Profit      float64 `json:"profit"`
}
