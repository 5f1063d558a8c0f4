package graph

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"sokoni-be/internal/cart"
	"sokoni-be/internal/middleware"
	"sokoni-be/internal/order"
	"sokoni-be/internal/product"
	"sokoni-be/internal/utils"
)

// Resolver answers the root Query fields from the storefront services.
type Resolver struct {
	Products product.Service
	Carts    cart.Service
	Orders   order.Service
}

// object is a resolved GraphQL object value.
type object struct {
	typename string
	fields   map[string]any
}

func (r *Resolver) resolveQuery(ctx context.Context, field string, args map[string]any) (any, error) {
	switch field {
	case "products":
		res, err := r.Products.List(ctx, product.ListOptions{
			Search:   stringArg(args, "q"),
			Category: stringArg(args, "category"),
			Sort:     product.SortOption(stringArg(args, "sort")),
		})
		if err != nil {
			return nil, err
		}
		return productObjects(res.Items), nil

	case "categories":
		res, err := r.Products.List(ctx, product.ListOptions{})
		if err != nil {
			return nil, err
		}
		return res.Categories, nil

	case "product":
		id, ok := utils.ParseID(stringArg(args, "id"))
		if !ok {
			return (*object)(nil), nil
		}
		res, err := r.Products.Detail(ctx, id)
		if errors.Is(err, product.ErrProductNotFound) {
			return (*object)(nil), nil
		}
		if err != nil {
			return nil, err
		}
		return &object{typename: "ProductDetail", fields: map[string]any{
			"product": productObject(res.Product),
			"related": productObjects(res.Related),
		}}, nil

	case "cart":
		view, err := r.Carts.View(ctx, middleware.SessionID(ctx))
		if err != nil {
			return nil, err
		}
		return cartObject(view), nil

	case "order":
		o, err := r.Orders.Get(ctx, stringArg(args, "number"))
		if errors.Is(err, order.ErrOrderNotFound) {
			return (*object)(nil), nil
		}
		if err != nil {
			return nil, err
		}
		if !middleware.CanViewOrder(ctx, o.CustomerRef) {
			return (*object)(nil), nil
		}
		return orderObject(o), nil

	case "orders":
		orders, err := r.Orders.ListForCustomer(ctx, middleware.CustomerRef(ctx))
		if err != nil {
			return nil, err
		}
		out := make([]*object, 0, len(orders))
		for _, o := range orders {
			out = append(out, orderObject(o))
		}
		return out, nil
	}

	return nil, fmt.Errorf("unknown field %q", field)
}

func stringArg(args map[string]any, name string) string {
	v, ok := args[name]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func productObject(p *product.Product) *object {
	return &object{typename: "Product", fields: map[string]any{
		"id":          strconv.FormatInt(p.ID, 10),
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price.String(),
		"category":    p.Category,
		"rating":      p.Rating.String(),
		"stock":       p.Stock,
		"createdAt":   p.CreatedAt.Format(time.RFC3339),
	}}
}

func productObjects(ps []*product.Product) []*object {
	out := make([]*object, 0, len(ps))
	for _, p := range ps {
		out = append(out, productObject(p))
	}
	return out
}

func cartObject(v *cart.View) *object {
	lines := make([]*object, 0, len(v.Lines))
	for _, l := range v.Lines {
		lines = append(lines, &object{typename: "CartLine", fields: map[string]any{
			"product":   productObject(l.Product),
			"quantity":  l.Quantity,
			"lineTotal": l.LineTotal.String(),
		}})
	}
	return &object{typename: "Cart", fields: map[string]any{
		"items":    lines,
		"subtotal": v.Subtotal.String(),
		"count":    v.Count,
	}}
}

func orderObject(o *order.Order) *object {
	items := make([]*object, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, &object{typename: "OrderItem", fields: map[string]any{
			"productId":   strconv.FormatInt(it.ProductID, 10),
			"productName": it.ProductName,
			"quantity":    it.Quantity,
			"unitPrice":   it.UnitPrice.String(),
			"lineTotal":   it.LineTotal.String(),
		}})
	}
	return &object{typename: "Order", fields: map[string]any{
		"orderNumber":      o.OrderNumber,
		"status":           string(o.Status),
		"name":             o.Name,
		"phone":            o.Phone,
		"county":           o.County,
		"address":          o.Address,
		"delivery":         o.Delivery,
		"items":            items,
		"subtotal":         o.Subtotal.String(),
		"shippingFee":      o.ShippingFee.String(),
		"total":            o.Total.String(),
		"paymentMethod":    o.PaymentMethod,
		"paymentReference": o.PaymentReference,
		"createdAt":        o.CreatedAt.Format(time.RFC3339),
	}}
}
