package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	azerrors "github.com/eitrtech/azurestate/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern         = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	resourceIDPattern     = regexp.MustCompile(`^[a-z0-9_-]+$`)
	storageNamePattern    = regexp.MustCompile(`^[a-z0-9]{3,24}$`)
	kindsWithoutGroup     = map[string]struct{}{"resource_group": {}}
	kindRequiresSpecError = "missing %s configuration for kind %q"
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("resource_id", func(fl validator.FieldLevel) bool {
			return resourceIDPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateConfig performs schema and cross-field validation on the state
// document. It runs entirely offline; no remote call happens here.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return azerrors.NewValidationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	idIndex := make(map[string]int, len(cfg.Resources))
	identityIndex := make(map[string]int, len(cfg.Resources))

	for i := range cfg.Resources {
		rsrc := &cfg.Resources[i]

		if prev, exists := idIndex[rsrc.ID]; exists {
			return azerrors.NewValidationError(
				fieldForResource(i, "id"),
				fmt.Sprintf("duplicate descriptor id %q (first declared at resources[%d])", rsrc.ID, prev),
				nil,
			)
		}
		idIndex[rsrc.ID] = i

		if err := validateResource(rsrc, i); err != nil {
			return err
		}

		// Two descriptors naming the same live resource is undefined behavior
		// (their desired states could conflict), so it is rejected outright.
		// The key uses the effective profile so an omitted profile and an
		// explicit default collide as they should.
		key := identityKey(rsrc, cfg.Profile)
		if prev, exists := identityIndex[key]; exists {
			return azerrors.NewValidationError(
				fieldForResource(i, "name"),
				fmt.Sprintf("descriptor targets the same resource as resources[%d] (%s %q)", prev, rsrc.Kind, rsrc.Name),
				nil,
			)
		}
		identityIndex[key] = i
	}

	return nil
}

func identityKey(r *Resource, documentProfile string) string {
	return strings.ToLower(strings.Join([]string{r.Kind, r.EffectiveProfile(documentProfile), r.ResourceGroup, r.Name}, "/"))
}

func validateResource(r *Resource, index int) error {
	v := validatorInstance()

	if _, scopeless := kindsWithoutGroup[r.Kind]; scopeless {
		if r.ResourceGroup != "" {
			return azerrors.NewValidationError(
				fieldForResource(index, "resource_group"),
				"resource groups are scoped to the subscription; resource_group must not be set",
				nil,
			)
		}
	} else if r.ResourceGroup == "" {
		return azerrors.NewValidationError(
			fieldForResource(index, "resource_group"),
			fmt.Sprintf("resource_group is required for kind %q", r.Kind),
			nil,
		)
	}

	// Absent descriptors carry identity only; the kind section is optional.
	if r.Absent() {
		return nil
	}

	switch r.Kind {
	case "resource_group":
		if r.Group == nil {
			return azerrors.NewValidationError(fieldForResource(index, "location"), fmt.Sprintf(kindRequiresSpecError, "resource group", r.Kind), nil)
		}
		if err := v.Struct(r.Group); err != nil {
			return convertValidationError(err)
		}
	case "virtual_network":
		if r.VirtualNetwork == nil {
			return azerrors.NewValidationError(fieldForResource(index, "address_prefixes"), fmt.Sprintf(kindRequiresSpecError, "virtual network", r.Kind), nil)
		}
		if err := v.Struct(r.VirtualNetwork); err != nil {
			return convertValidationError(err)
		}
	case "storage_account":
		if r.StorageAccount == nil {
			return azerrors.NewValidationError(fieldForResource(index, "sku"), fmt.Sprintf(kindRequiresSpecError, "storage account", r.Kind), nil)
		}
		if !storageNamePattern.MatchString(r.Name) {
			return azerrors.NewValidationError(
				fieldForResource(index, "name"),
				"storage account names must be 3-24 lowercase letters and digits",
				nil,
			)
		}
		if err := v.Struct(r.StorageAccount); err != nil {
			return convertValidationError(err)
		}
	case "dns_zone":
		if r.DNSZone == nil {
			return azerrors.NewValidationError(fieldForResource(index, "kind"), fmt.Sprintf(kindRequiresSpecError, "dns zone", r.Kind), nil)
		}
	case "virtual_machine":
		if r.VirtualMachine == nil {
			return azerrors.NewValidationError(fieldForResource(index, "size"), fmt.Sprintf(kindRequiresSpecError, "virtual machine", r.Kind), nil)
		}
		if err := v.Struct(r.VirtualMachine); err != nil {
			return convertValidationError(err)
		}
		if err := validateVMAuth(r.VirtualMachine, index); err != nil {
			return err
		}
	}

	return nil
}

// validateVMAuth enforces that exactly one admin authentication method is
// declared for a virtual machine.
func validateVMAuth(vm *VirtualMachineSpec, index int) error {
	hasPassword := vm.AdminPassword != ""
	hasKey := vm.SSHPublicKey != ""

	if hasPassword && hasKey {
		return azerrors.NewValidationError(
			fieldForResource(index, "ssh_public_key"),
			"admin_password and ssh_public_key are mutually exclusive",
			nil,
		)
	}
	if !hasPassword && !hasKey {
		return azerrors.NewValidationError(
			fieldForResource(index, "admin_password"),
			"one of admin_password or ssh_public_key is required",
			nil,
		)
	}

	return nil
}

func fieldForResource(index int, field string) string {
	return fmt.Sprintf("resources[%d].%s", index, field)
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
		first := verrs[0]
		field := strings.ToLower(first.Namespace())
		return azerrors.NewValidationError(field, fmt.Sprintf("failed %q constraint", first.Tag()), err)
	}

	return azerrors.NewValidationError("", err.Error(), err)
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = verrs
	return true
}
