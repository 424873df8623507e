package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultConfigDir  = ".easyswap-launchpad"
	defaultConfigName = "config"
)

var cfgFile string

// rootCmd 代表没有子命令时的基础命令
var rootCmd = &cobra.Command{
	Use:   "launchpad",
	Short: "inscription launchpad sale service.",
	Long:  "inscription launchpad sale service: sale agents, launchpad progress and seller policy.",
}

// Execute 将所有子命令添加到 root 命令并设置 flag
// 由 main.main() 调用, 只需要调用一次
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/"+defaultConfigDir+"/"+defaultConfigName+".toml)")
}

// initConfig 读取配置文件路径
// 1. 指定了 --config 时使用该文件
// 2. 否则查找 $HOME/.easyswap-launchpad/config.toml
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(filepath.Join(home, defaultConfigDir))
		viper.SetConfigName(defaultConfigName)
	}
	viper.SetConfigType("toml")
}
