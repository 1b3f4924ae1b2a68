package orders

const (
	TopicOrderPlaced = "shop.order.placed"
)

// Partition key = order id, so every event of one order keeps its order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
