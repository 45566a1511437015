package state

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"

	"github.com/storekit/tender/log2"
	"github.com/storekit/tender/tender"
	tender_config "github.com/storekit/tender/tender/config"
)

type Config struct {
	Tenders tender_config.Config `hcl:"tenders"`
	Money   struct {
		Currency string `hcl:"currency"`
	} `hcl:"money"`
}

func (c *Config) Registry(log *log2.Log) (*tender.Registry, error) {
	reg, err := tender.NewRegistry(&c.Tenders, log)
	if err != nil {
		return nil, errors.Annotatef(err, "config: tenders")
	}
	return reg, nil
}

func ReadConfig(r io.Reader, log *log2.Log) (*Config, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	c := new(Config)
	if err = hcl.Unmarshal(b, c); err != nil {
		return nil, errors.Annotatef(err, "config syntax")
	}
	return c, nil
}

func ReadConfigFile(path string, log *log2.Log) (*Config, error) {
	if pathAbs, err := filepath.Abs(path); err != nil {
		log.Errorf("filepath.Abs(%s) error=%v", path, err)
	} else {
		path = pathAbs
	}
	log.Debugf("reading config file %s", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadConfig(f, log)
}

func MustReadConfig(r io.Reader, log *log2.Log) *Config {
	c, err := ReadConfig(r, log)
	if err != nil {
		log.Fatal(err)
	}
	return c
}

func MustReadConfigFile(path string, log *log2.Log) *Config {
	c, err := ReadConfigFile(path, log)
	if err != nil {
		log.Fatal(err)
	}
	return c
}
