// Package script runs store scripts: one command per line, driving the store
// engine the same way the HTTP API does.
//
//	define store store1 name "Main Street" address "1 Main St"
//	define aisle store1:1 name Dairy description "cold stuff" location floor
//	add_basket_item b1 product milk item_count 2
//
// A failing line is reported as a CommandError and processing continues.
package script

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"smartstore/internal/store/models"
	dErrors "smartstore/pkg/domain-errors"
	"smartstore/pkg/requestcontext"
)

// Engine is the store engine surface the interpreter drives.
type Engine interface {
	ProvisionStore(ctx context.Context, id, name, address, description string) (*models.Store, error)
	ShowStore(ctx context.Context, id string) (*models.Store, error)
	UpdateStore(ctx context.Context, id, name, address, description string) (*models.Store, error)
	DeleteStore(ctx context.Context, id string) error
	ProvisionAisle(ctx context.Context, storeID, number, name, description string, location models.AisleLocation) (*models.Aisle, error)
	ShowAisle(ctx context.Context, storeID, number string) (*models.Aisle, error)
	ProvisionShelf(ctx context.Context, storeID, aisleNumber, shelfID, name string, level models.ShelfLevel, description string, temperature models.Temperature) (*models.Shelf, error)
	ShowShelf(ctx context.Context, storeID, aisleNumber, shelfID string) (*models.Shelf, error)
	ProvisionProduct(ctx context.Context, id, name, description, size, category string, price float64, temperature models.Temperature) (*models.Product, error)
	ShowProduct(ctx context.Context, id string) (*models.Product, error)
	ProvisionInventory(ctx context.Context, id, storeID, aisleNumber, shelfID string, capacity, count int, productID string, invType models.InventoryType) (*models.Inventory, error)
	UpdateInventory(ctx context.Context, id string, delta int) (*models.Inventory, error)
	ShowInventory(ctx context.Context, id string) (*models.Inventory, error)
	ProvisionCustomer(ctx context.Context, id, firstName, lastName string, customerType models.CustomerType, email, accountAddress string, ageGroup models.AgeGroup) (*models.Customer, error)
	ShowCustomer(ctx context.Context, id string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id, storeID, aisleNumber string) (*models.Customer, error)
	ProvisionBasket(ctx context.Context, id string) (*models.Basket, error)
	ShowBasket(ctx context.Context, id string) (*models.Basket, error)
	AssignCustomerBasket(ctx context.Context, customerID, basketID string) (*models.Basket, error)
	AddBasketProduct(ctx context.Context, basketID, productID string, quantity int) (*models.Basket, error)
	RemoveBasketProduct(ctx context.Context, basketID, productID string, quantity int) (*models.Basket, error)
	ClearBasket(ctx context.Context, basketID string) (*models.Basket, error)
	ProvisionDevice(ctx context.Context, id, name, typeTag, storeID, aisleNumber string) (*models.Device, error)
	ShowDevice(ctx context.Context, id string) (*models.Device, error)
	RaiseEvent(ctx context.Context, deviceID, event string) error
	IssueCommand(ctx context.Context, deviceID, command string) error
}

// Processor interprets script lines. Output of show commands goes to out as indented JSON.
type Processor struct {
	engine   Engine
	out      io.Writer
	logger   *slog.Logger
	handlers map[string]func(ctx context.Context, c command) error
}

func NewProcessor(engine Engine, out io.Writer, logger *slog.Logger) *Processor {
	p := &Processor{engine: engine, out: out, logger: logger}
	p.handlers = map[string]func(ctx context.Context, c command) error{
		"define store":       p.defineStore,
		"show store":         p.showStore,
		"update store":       p.updateStore,
		"delete store":       p.deleteStore,
		"define aisle":       p.defineAisle,
		"show aisle":         p.showAisle,
		"define shelf":       p.defineShelf,
		"show shelf":         p.showShelf,
		"define product":     p.defineProduct,
		"show product":       p.showProduct,
		"define inventory":   p.defineInventory,
		"show inventory":     p.showInventory,
		"update inventory":   p.updateInventory,
		"define customer":    p.defineCustomer,
		"show customer":      p.showCustomer,
		"update customer":    p.updateCustomer,
		"define basket":      p.defineBasket,
		"show basket":        p.showBasket,
		"show basket_items":  p.showBasket,
		"assign basket":      p.assignBasket,
		"add_basket_item":    p.addBasketItem,
		"remove_basket_item": p.removeBasketItem,
		"clear_basket":       p.clearBasket,
		"define device":      p.defineDevice,
		"show device":        p.showDevice,
		"create_event":       p.createEvent,
		"create_command":     p.createCommand,
	}
	return p
}

// command is one parsed line: its name, the subject id and keyword arguments.
type command struct {
	name string
	id   string
	args map[string]string
}

func (c command) arg(key string) (string, error) {
	v, ok := c.args[key]
	if !ok {
		return "", dErrors.New(dErrors.CodeValidation, "missing argument "+key)
	}
	return v, nil
}

func (c command) optional(key, fallback string) string {
	if v, ok := c.args[key]; ok {
		return v
	}
	return fallback
}

func (c command) intArg(key string) (int, error) {
	v, err := c.arg(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeValidation, key+" must be an integer")
	}
	return n, nil
}

// twoWord verbs take their entity as the second word.
var twoWord = map[string]bool{"define": true, "show": true, "update": true, "assign": true, "delete": true}

func parse(tokens []string) (command, error) {
	name := strings.ToLower(tokens[0])
	rest := tokens[1:]
	if twoWord[name] {
		if len(rest) == 0 {
			return command{name: name}, dErrors.New(dErrors.CodeValidation, "missing entity")
		}
		name += " " + strings.ToLower(rest[0])
		rest = rest[1:]
	}
	c := command{name: name, args: make(map[string]string)}
	if len(rest) == 0 {
		return c, dErrors.New(dErrors.CodeValidation, "missing identifier")
	}
	c.id, rest = rest[0], rest[1:]
	if len(rest)%2 != 0 {
		return c, dErrors.New(dErrors.CodeValidation, "argument "+rest[len(rest)-1]+" has no value")
	}
	for i := 0; i < len(rest); i += 2 {
		c.args[strings.ToLower(rest[i])] = rest[i+1]
	}
	return c, nil
}

// Run executes every line of r. Failed lines are returned in order; only a
// read failure aborts the run.
func (p *Processor) Run(ctx context.Context, name string, r io.Reader) ([]*CommandError, error) {
	ctx = requestcontext.WithSession(ctx, "script:"+name)
	var failures []*CommandError
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if cerr := p.Execute(ctx, scanner.Text(), line); cerr != nil {
			p.logger.WarnContext(ctx, "script command failed",
				"line", cerr.Line,
				"command", cerr.Command,
				"reason", cerr.Reason,
			)
			failures = append(failures, cerr)
		}
	}
	if err := scanner.Err(); err != nil {
		return failures, fmt.Errorf("read script %s: %w", name, err)
	}
	return failures, nil
}

// Execute runs a single line. Blank and comment lines are no-ops.
func (p *Processor) Execute(ctx context.Context, text string, line int) *CommandError {
	tokens, err := Tokenize(text)
	if err != nil {
		return commandError(strings.TrimSpace(text), line, err)
	}
	if len(tokens) == 0 {
		return nil
	}
	c, err := parse(tokens)
	if err != nil {
		return commandError(c.name, line, err)
	}
	h, ok := p.handlers[c.name]
	if !ok {
		return commandError(c.name, line, dErrors.New(dErrors.CodeValidation, "unknown command"))
	}
	ctx = requestcontext.WithRequestID(ctx, uuid.NewString())
	if err := h(ctx, c); err != nil {
		return commandError(c.name, line, err)
	}
	return nil
}

func (p *Processor) print(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// location splits "store:aisle[:shelf]" into exactly parts components.
func location(s string, parts int) ([]string, error) {
	fields := strings.Split(s, ":")
	if len(fields) != parts {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("location %q must have %d parts", s, parts))
	}
	for _, f := range fields {
		if f == "" {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("location %q has an empty part", s))
		}
	}
	return fields, nil
}
