package domain

// ComputeTotals derives the monetary figures for an invoice. It is pure:
// no I/O, no mutation of the input, and the same input always produces
// bit-identical output. Nothing is rounded here; formatting to
// currency-minor-unit precision happens at display time only.
//
// The order of operations is fixed. Item discounts come off the raw
// subtotal, the global discount applies to the item-discounted amount,
// shipping is added before the global tax, and the global tax applies to
// the shipping-inclusive discounted amount. Reordering any of these
// changes the result.
func ComputeTotals(inv *Invoice) Totals {
	var subtotal, itemDiscounts, itemTaxes float64

	for _, item := range inv.Items {
		lineAmount := item.Quantity * item.UnitPrice
		subtotal += lineAmount

		lineDiscount := 0.0
		if item.DiscountPct > 0 {
			lineDiscount = lineAmount * item.DiscountPct / 100
			itemDiscounts += lineDiscount
		}

		// Item tax applies to the line after its own discount, not the
		// global one.
		if item.TaxRatePct > 0 {
			itemTaxes += (lineAmount - lineDiscount) * item.TaxRatePct / 100
		}
	}

	subtotalAfterItemDiscounts := subtotal - itemDiscounts

	globalDiscount := 0.0
	if inv.Adjustments.GlobalDiscountPct > 0 {
		globalDiscount = subtotalAfterItemDiscounts * inv.Adjustments.GlobalDiscountPct / 100
	}

	totalDiscount := itemDiscounts + globalDiscount
	amountAfterDiscounts := subtotalAfterItemDiscounts - globalDiscount
	amountWithShipping := amountAfterDiscounts + inv.Adjustments.Shipping

	globalTax := 0.0
	if inv.Adjustments.GlobalTaxPct > 0 {
		globalTax = amountWithShipping * inv.Adjustments.GlobalTaxPct / 100
	}

	totalTax := itemTaxes + globalTax
	grandTotal := amountWithShipping + totalTax

	amountPaid := 0.0
	for _, p := range inv.Payments {
		amountPaid += p.Amount
	}

	// Overpayment yields a negative balance; that is valid and not clamped.
	return Totals{
		Subtotal:   subtotal,
		Tax:        totalTax,
		Discount:   totalDiscount,
		GrandTotal: grandTotal,
		AmountPaid: amountPaid,
		BalanceDue: grandTotal - amountPaid,
	}
}

// DeriveStatus applies the payment-driven status transitions after a
// recomputation. It is orchestration policy, kept out of ComputeTotals:
// a fully paid invoice becomes paid, and a paid invoice whose balance
// reopens reverts to sent. Archived invoices never transition.
func DeriveStatus(prev InvoiceStatus, t Totals) InvoiceStatus {
	if prev == InvoiceStatusArchived {
		return prev
	}
	if t.GrandTotal > 0 && t.BalanceDue <= 0 {
		return InvoiceStatusPaid
	}
	if prev == InvoiceStatusPaid && t.BalanceDue > 0 {
		return InvoiceStatusSent
	}
	return prev
}
