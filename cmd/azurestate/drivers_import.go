package main

// Blank imports ensure driver init() registration runs for the CLI binary.
import (
	_ "github.com/eitrtech/azurestate/internal/drivers/dnszone"
	_ "github.com/eitrtech/azurestate/internal/drivers/resourcegroup"
	_ "github.com/eitrtech/azurestate/internal/drivers/storageaccount"
	_ "github.com/eitrtech/azurestate/internal/drivers/virtualmachine"
	_ "github.com/eitrtech/azurestate/internal/drivers/virtualnetwork"
)
