package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fulldump/goconfig"

	"github.com/fulldump/inceptioncrm/bootstrap"
	"github.com/fulldump/inceptioncrm/configuration"
)

var banner = `
 ___                      _   _              ____ ____  __  __
|_ _|_ __   ___ ___ _ __ | |_(_) ___  _ __  / ___|  _ \|  \/  |
 | || '_ \ / __/ _ \ '_ \| __| |/ _ \| '_ \| |   | |_) | |\/| |
 | || | | | (_|  __/ |_) | |_| | (_) | | | | |___|  _ <| |  | |
|___|_| |_|\___\___| .__/ \__|_|\___/|_| |_|\____|_| \_\_|  |_|
                   |_|                     version ` + bootstrap.VERSION + `
`

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", bootstrap.VERSION)
		return
	}

	if c.ShowBanner {
		fmt.Println(banner)
	}

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		e.Encode(c)
	}

	logger, err := bootstrap.NewLogger(c.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err.Error())
		os.Exit(-1)
	}
	defer logger.Sync()

	start, _ := bootstrap.Bootstrap(&c, logger)
	start()
}
