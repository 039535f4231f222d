package script

import (
	"context"
	"strconv"

	"smartstore/internal/store/models"
	dErrors "smartstore/pkg/domain-errors"
)

func (p *Processor) defineStore(ctx context.Context, c command) error {
	name, err := c.arg("name")
	if err != nil {
		return err
	}
	address, err := c.arg("address")
	if err != nil {
		return err
	}
	_, err = p.engine.ProvisionStore(ctx, c.id, name, address, c.optional("description", ""))
	return err
}

func (p *Processor) showStore(ctx context.Context, c command) error {
	st, err := p.engine.ShowStore(ctx, c.id)
	if err != nil {
		return err
	}
	return p.print(st)
}

func (p *Processor) updateStore(ctx context.Context, c command) error {
	_, err := p.engine.UpdateStore(ctx, c.id, c.optional("name", ""), c.optional("address", ""), c.optional("description", ""))
	return err
}

func (p *Processor) deleteStore(ctx context.Context, c command) error {
	return p.engine.DeleteStore(ctx, c.id)
}

func (p *Processor) defineAisle(ctx context.Context, c command) error {
	loc, err := location(c.id, 2)
	if err != nil {
		return err
	}
	where, err := c.arg("location")
	if err != nil {
		return err
	}
	aisleLoc, err := models.ParseAisleLocation(where)
	if err != nil {
		return err
	}
	_, err = p.engine.ProvisionAisle(ctx, loc[0], loc[1], c.optional("name", ""), c.optional("description", ""), aisleLoc)
	return err
}

func (p *Processor) showAisle(ctx context.Context, c command) error {
	loc, err := location(c.id, 2)
	if err != nil {
		return err
	}
	a, err := p.engine.ShowAisle(ctx, loc[0], loc[1])
	if err != nil {
		return err
	}
	return p.print(a)
}

func (p *Processor) defineShelf(ctx context.Context, c command) error {
	loc, err := location(c.id, 3)
	if err != nil {
		return err
	}
	levelArg, err := c.arg("level")
	if err != nil {
		return err
	}
	level, err := models.ParseShelfLevel(levelArg)
	if err != nil {
		return err
	}
	temp, err := models.ParseTemperature(c.optional("temperature", string(models.TemperatureAmbient)))
	if err != nil {
		return err
	}
	_, err = p.engine.ProvisionShelf(ctx, loc[0], loc[1], loc[2], c.optional("name", ""), level, c.optional("description", ""), temp)
	return err
}

func (p *Processor) showShelf(ctx context.Context, c command) error {
	loc, err := location(c.id, 3)
	if err != nil {
		return err
	}
	sh, err := p.engine.ShowShelf(ctx, loc[0], loc[1], loc[2])
	if err != nil {
		return err
	}
	return p.print(sh)
}

func (p *Processor) defineProduct(ctx context.Context, c command) error {
	priceArg, err := c.arg("unit_price")
	if err != nil {
		return err
	}
	price, err := strconv.ParseFloat(priceArg, 64)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "unit_price must be a number")
	}
	temp, err := models.ParseTemperature(c.optional("temperature", string(models.TemperatureAmbient)))
	if err != nil {
		return err
	}
	_, err = p.engine.ProvisionProduct(ctx, c.id, c.optional("name", ""), c.optional("description", ""),
		c.optional("size", ""), c.optional("category", ""), price, temp)
	return err
}

func (p *Processor) showProduct(ctx context.Context, c command) error {
	prod, err := p.engine.ShowProduct(ctx, c.id)
	if err != nil {
		return err
	}
	return p.print(prod)
}

func (p *Processor) defineInventory(ctx context.Context, c command) error {
	where, err := c.arg("location")
	if err != nil {
		return err
	}
	loc, err := location(where, 3)
	if err != nil {
		return err
	}
	capacity, err := c.intArg("capacity")
	if err != nil {
		return err
	}
	count, err := c.intArg("count")
	if err != nil {
		return err
	}
	productID, err := c.arg("product")
	if err != nil {
		return err
	}
	invType, err := models.ParseInventoryType(c.optional("inventory_type", string(models.InventoryTypeStandard)))
	if err != nil {
		return err
	}
	_, err = p.engine.ProvisionInventory(ctx, c.id, loc[0], loc[1], loc[2], capacity, count, productID, invType)
	return err
}

func (p *Processor) showInventory(ctx context.Context, c command) error {
	inv, err := p.engine.ShowInventory(ctx, c.id)
	if err != nil {
		return err
	}
	return p.print(inv)
}

func (p *Processor) updateInventory(ctx context.Context, c command) error {
	delta, err := c.intArg("update_count")
	if err != nil {
		return err
	}
	_, err = p.engine.UpdateInventory(ctx, c.id, delta)
	return err
}

func (p *Processor) defineCustomer(ctx context.Context, c command) error {
	typeArg, err := c.arg("type")
	if err != nil {
		return err
	}
	ctype, err := models.ParseCustomerType(typeArg)
	if err != nil {
		return err
	}
	var age models.AgeGroup
	if v := c.optional("age_group", ""); v != "" {
		if age, err = models.ParseAgeGroup(v); err != nil {
			return err
		}
	}
	_, err = p.engine.ProvisionCustomer(ctx, c.id, c.optional("first_name", ""), c.optional("last_name", ""), ctype,
		c.optional("email_address", ""), c.optional("account", ""), age)
	return err
}

func (p *Processor) showCustomer(ctx context.Context, c command) error {
	cust, err := p.engine.ShowCustomer(ctx, c.id)
	if err != nil {
		return err
	}
	return p.print(cust)
}

func (p *Processor) updateCustomer(ctx context.Context, c command) error {
	where, err := c.arg("location")
	if err != nil {
		return err
	}
	loc, err := location(where, 2)
	if err != nil {
		return err
	}
	_, err = p.engine.UpdateCustomer(ctx, c.id, loc[0], loc[1])
	return err
}

func (p *Processor) defineBasket(ctx context.Context, c command) error {
	_, err := p.engine.ProvisionBasket(ctx, c.id)
	return err
}

func (p *Processor) showBasket(ctx context.Context, c command) error {
	b, err := p.engine.ShowBasket(ctx, c.id)
	if err != nil {
		return err
	}
	return p.print(b)
}

func (p *Processor) assignBasket(ctx context.Context, c command) error {
	customerID, err := c.arg("customer")
	if err != nil {
		return err
	}
	_, err = p.engine.AssignCustomerBasket(ctx, customerID, c.id)
	return err
}

func (p *Processor) addBasketItem(ctx context.Context, c command) error {
	productID, quantity, err := basketItem(c)
	if err != nil {
		return err
	}
	_, err = p.engine.AddBasketProduct(ctx, c.id, productID, quantity)
	return err
}

func (p *Processor) removeBasketItem(ctx context.Context, c command) error {
	productID, quantity, err := basketItem(c)
	if err != nil {
		return err
	}
	_, err = p.engine.RemoveBasketProduct(ctx, c.id, productID, quantity)
	return err
}

func basketItem(c command) (string, int, error) {
	productID, err := c.arg("product")
	if err != nil {
		return "", 0, err
	}
	quantity, err := c.intArg("item_count")
	if err != nil {
		return "", 0, err
	}
	return productID, quantity, nil
}

func (p *Processor) clearBasket(ctx context.Context, c command) error {
	_, err := p.engine.ClearBasket(ctx, c.id)
	return err
}

func (p *Processor) defineDevice(ctx context.Context, c command) error {
	typeTag, err := c.arg("type")
	if err != nil {
		return err
	}
	where, err := c.arg("location")
	if err != nil {
		return err
	}
	loc, err := location(where, 2)
	if err != nil {
		return err
	}
	_, err = p.engine.ProvisionDevice(ctx, c.id, c.optional("name", ""), typeTag, loc[0], loc[1])
	return err
}

func (p *Processor) showDevice(ctx context.Context, c command) error {
	d, err := p.engine.ShowDevice(ctx, c.id)
	if err != nil {
		return err
	}
	return p.print(d)
}

func (p *Processor) createEvent(ctx context.Context, c command) error {
	event, err := c.arg("event")
	if err != nil {
		return err
	}
	return p.engine.RaiseEvent(ctx, c.id, event)
}

func (p *Processor) createCommand(ctx context.Context, c command) error {
	msg := c.optional("message", c.optional("command", ""))
	if msg == "" {
		return dErrors.New(dErrors.CodeValidation, "missing argument message")
	}
	return p.engine.IssueCommand(ctx, c.id, msg)
}
