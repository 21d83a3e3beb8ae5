// Package kickdex is a Go client for the kickdex admin API.
//
//	client, _ := kickdex.New("http://localhost:8080", kickdex.WithAPIKey(key))
//
//	res, _ := client.Query("Product").
//	    Term("milk").
//	    Fields("name^2", "brand").
//	    Where("store_id", 1).
//	    Order("price", "asc").
//	    PerPage(20).
//	    Do(ctx)
//
//	_ = client.PutRecord(ctx, "Product", kickdex.Record{ID: "1", Data: map[string]any{"name": "Milk"}})
//	n, _ := client.QueueLength(ctx, "Store")
package kickdex
